package usecase

import (
	"context"
	"io"

	"marketplace/internal/domain/entity"
)

// SessionManager issues and verifies session tokens.
type SessionManager interface {
	Issue(username string) (string, *entity.Session, error)
	Parse(token string) (*entity.Session, error)
}

// ImageStore persists item images and returns a public URL.
type ImageStore interface {
	UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error)
	DeleteImage(ctx context.Context, url string) error
}

// Actor is the already-authenticated caller of an operation.
type Actor struct {
	Username string
	IsAdmin  bool
}

func (a Actor) CanManage(owner string) bool {
	return a.IsAdmin || (a.Username != "" && a.Username == owner)
}
