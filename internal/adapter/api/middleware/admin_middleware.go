package middleware

import (
	"github.com/labstack/echo/v4"

	"marketplace/internal/domain/repository"
	"marketplace/pkg/errors"
	"marketplace/pkg/logger"
	"marketplace/pkg/response"
)

type AdminMiddleware struct {
	userRepo repository.UserRepository
}

func NewAdminMiddleware(userRepo repository.UserRepository) *AdminMiddleware {
	return &AdminMiddleware{
		userRepo: userRepo,
	}
}

// AdminOnly must run after Authenticate. The flag is re-read from storage so a
// revoked admin loses access immediately.
func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		username, ok := c.Get(ContextUsername).(string)
		if !ok || username == "" {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		user, err := m.userRepo.GetByUsername(c.Request().Context(), username)
		if err != nil {
			if errors.IsNotFound(err) {
				return response.Error(c, errors.Unauthorized("Authentication required", err))
			}
			return response.Error(c, errors.Internal("Failed to verify admin privileges", err))
		}

		if !user.IsAdmin {
			logger.Warn("Non-admin %s requested %s %s", username, c.Request().Method, c.Path())
			return response.Error(c, errors.Forbidden("Admin privileges required", nil))
		}

		c.Set(ContextIsAdmin, true)
		return next(c)
	}
}
