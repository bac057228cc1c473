package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	memrepo "marketplace/internal/adapter/repository"
	"marketplace/internal/infrastructure/session"
	"marketplace/pkg/errors"
)

func newAuthUseCase(t *testing.T, bootstrapAdmin string) *AuthUseCase {
	t.Helper()
	uc := NewAuthUseCase(memrepo.NewMemoryUserRepository(), session.NewManager("test-secret", time.Hour), bootstrapAdmin)
	uc.hashCost = bcrypt.MinCost
	return uc
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	uc := newAuthUseCase(t, "")

	registered, err := uc.Register(ctx, RegisterInput{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.User.Username)
	assert.False(t, registered.User.IsAdmin)
	assert.NotEmpty(t, registered.Token)
	assert.NotEqual(t, "correct horse", registered.User.PasswordHash)

	loggedIn, err := uc.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", loggedIn.Session.Username)

	user, sess, err := uc.Resolve(ctx, loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, loggedIn.Session.ID, sess.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	uc := newAuthUseCase(t, "")

	_, err := uc.Register(ctx, RegisterInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)

	_, err = uc.Register(ctx, RegisterInput{Username: "alice", Password: "password2"})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestRegisterBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	uc := newAuthUseCase(t, "root")

	result, err := uc.Register(ctx, RegisterInput{Username: "root", Password: "password1"})
	require.NoError(t, err)
	assert.True(t, result.User.IsAdmin)

	result, err = uc.Register(ctx, RegisterInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	assert.False(t, result.User.IsAdmin)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	uc := newAuthUseCase(t, "")

	_, err := uc.Register(ctx, RegisterInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, "alice", "wrong")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	_, err = uc.Login(ctx, "nobody", "password1")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestResolveRejectsInvalidSessions(t *testing.T) {
	ctx := context.Background()
	uc := newAuthUseCase(t, "")

	_, _, err := uc.Resolve(ctx, "not-a-token")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	result, err := uc.Register(ctx, RegisterInput{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	require.NoError(t, uc.userRepo.Delete(ctx, "alice"))

	_, _, err = uc.Resolve(ctx, result.Token)
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}
