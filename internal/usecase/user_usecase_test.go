package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/pkg/errors"
)

func TestSetAdmin(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "root", "alice")
	uc := NewUserUseCase(f.users, f.uc)
	root := Actor{Username: "root", IsAdmin: true}

	_, err := uc.SetAdmin(f.ctx, Actor{Username: "alice"}, "alice", true)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	user, err := uc.SetAdmin(f.ctx, root, "alice", true)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	_, err = uc.SetAdmin(f.ctx, root, "root", false)
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = uc.SetAdmin(f.ctx, root, "ghost", true)
	assert.True(t, errors.IsNotFound(err))
}

func TestListUsersPaginates(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "carol", "alice", "bob")
	uc := NewUserUseCase(f.users, f.uc)

	users, total, err := uc.ListUsers(f.ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	users, _, err = uc.ListUsers(f.ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0].Username)
}

func TestDeleteUserCascades(t *testing.T) {
	f := newLedgerFixture(t)
	f.addUser(t, "alice", "bob")
	f.addItem(t, "i1", "Lamp")
	f.submit(t, "i1", "alice", 10)
	f.submit(t, "i1", "bob", 2)
	uc := NewUserUseCase(f.users, f.uc)

	_, err := uc.DeleteUser(f.ctx, Actor{Username: "bob"}, "alice")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	result, err := uc.DeleteUser(f.ctx, Actor{Username: "alice"}, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"i1"}, result.Affected)

	_, err = uc.GetProfile(f.ctx, "alice")
	assert.True(t, errors.IsNotFound(err))

	item := f.item(t, "i1")
	assert.Equal(t, 1, item.ReviewCount)
	assert.Equal(t, 2.0, item.Rating)

	// Admins may remove any account.
	_, err = uc.DeleteUser(f.ctx, Actor{Username: "root", IsAdmin: true}, "bob")
	assert.NoError(t, err)
}
