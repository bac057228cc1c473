package usecase

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/repository"
	"marketplace/pkg/errors"
	"marketplace/pkg/logger"
)

type AuthUseCase struct {
	userRepo       repository.UserRepository
	sessions       SessionManager
	bootstrapAdmin string
	hashCost       int
}

func NewAuthUseCase(userRepo repository.UserRepository, sessions SessionManager, bootstrapAdmin string) *AuthUseCase {
	return &AuthUseCase{
		userRepo:       userRepo,
		sessions:       sessions,
		bootstrapAdmin: strings.TrimSpace(bootstrapAdmin),
		hashCost:       bcrypt.DefaultCost,
	}
}

type RegisterInput struct {
	Username string
	Password string
}

type AuthResult struct {
	User    *entity.User
	Token   string
	Session *entity.Session
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, errors.Validation("username is required")
	}
	if input.Password == "" {
		return nil, errors.Validation("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.hashCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	user := &entity.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      uc.bootstrapAdmin != "" && username == uc.bootstrapAdmin,
		Reviews:      []entity.UserReview{},
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if user.IsAdmin {
		logger.Info("Bootstrap admin %s registered", username)
	}

	return uc.startSession(user)
}

func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized("Invalid credentials", nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Debug("Login failed for %s: %v", user.Username, err)
		return nil, errors.Unauthorized("Invalid credentials", nil)
	}

	return uc.startSession(user)
}

// Resolve verifies a session token and loads the user behind it. Tokens of
// deleted users are rejected.
func (uc *AuthUseCase) Resolve(ctx context.Context, token string) (*entity.User, *entity.Session, error) {
	session, err := uc.sessions.Parse(token)
	if err != nil {
		return nil, nil, errors.Unauthorized("Invalid or expired session", err)
	}

	user, err := uc.userRepo.GetByUsername(ctx, session.Username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil, errors.Unauthorized("Session user no longer exists", err)
		}
		return nil, nil, err
	}
	return user, session, nil
}

func (uc *AuthUseCase) startSession(user *entity.User) (*AuthResult, error) {
	token, session, err := uc.sessions.Issue(user.Username)
	if err != nil {
		return nil, errors.Internal("Failed to issue session", err)
	}
	return &AuthResult{
		User:    user,
		Token:   token,
		Session: session,
	}, nil
}
