package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"marketplace/internal/usecase"
	"marketplace/pkg/errors"
	"marketplace/pkg/response"
)

const (
	SessionCookie = "session"

	ContextUsername = "username"
	ContextIsAdmin  = "isAdmin"
)

type AuthMiddleware struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthMiddleware(authUseCase *usecase.AuthUseCase) *AuthMiddleware {
	return &AuthMiddleware{
		authUseCase: authUseCase,
	}
}

// Authenticate accepts a bearer token or the session cookie and stores the
// caller's username and admin flag in the echo context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := extractToken(c)
		if err != nil {
			return response.Error(c, err)
		}

		user, _, err := m.authUseCase.Resolve(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, err)
		}

		c.Set(ContextUsername, user.Username)
		c.Set(ContextIsAdmin, user.IsAdmin)

		return next(c)
	}
}

func extractToken(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", errors.Unauthorized("Invalid authorization format", nil)
		}
		return parts[1], nil
	}

	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", errors.Unauthorized("Authentication required", nil)
	}
	return cookie.Value, nil
}

// Actor returns the authenticated caller stored by Authenticate.
func Actor(c echo.Context) usecase.Actor {
	username, _ := c.Get(ContextUsername).(string)
	isAdmin, _ := c.Get(ContextIsAdmin).(bool)
	return usecase.Actor{Username: username, IsAdmin: isAdmin}
}
