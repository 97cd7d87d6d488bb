package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminPolicy decides which authenticated users may use admin routes
type AdminPolicy interface {
	IsAdmin(user *AuthUser) bool
}

// EmailAdminPolicy grants admin to a fixed set of email addresses
type EmailAdminPolicy struct {
	emails map[string]struct{}
}

func NewEmailAdminPolicy(emails []string) *EmailAdminPolicy {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return &EmailAdminPolicy{emails: set}
}

func (p *EmailAdminPolicy) IsAdmin(user *AuthUser) bool {
	if user == nil || user.Email == "" {
		return false
	}
	_, ok := p.emails[strings.ToLower(user.Email)]
	return ok
}

// RequireAdmin rejects requests whose user fails the policy. It must run after JWTMiddleware.
func RequireAdmin(policy AdminPolicy, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := GetUserFromContext(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Authentication required",
					"code":  "AUTH_REQUIRED",
				})
			}

			if !policy.IsAdmin(user) {
				logger.Warn("Admin access denied",
					zap.String("user_id", user.UserID),
					zap.String("path", c.Request().URL.Path))
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": "Admin access required",
					"code":  "FORBIDDEN",
				})
			}

			return next(c)
		}
	}
}
