package auth

import (
	"strings"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/config"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"

	CookieName = "token"
)

// JWTMiddleware accepts the credential from "Authorization: Bearer" or the token cookie.
func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := ""
		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				tokenStr = strings.TrimSpace(parts[1])
			}
		}
		if tokenStr == "" {
			if cookie := c.Cookies(CookieName); cookie != "" && cookie != "none" {
				tokenStr = cookie
			}
		}
		if tokenStr == "" {
			return apperr.Unauthorizedf("Not authorized to access this route")
		}

		claims, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return apperr.Unauthorizedf("Not authorized to access this route")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role, err := Caller(c)
		if err != nil {
			return err
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return apperr.Forbiddenf("User role %s is not authorized to access this route", role)
	}
}

// Caller returns the identity JWTMiddleware stored on the request.
func Caller(c *fiber.Ctx) (uint, models.UserRole, error) {
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return 0, "", apperr.Unauthorizedf("User not authenticated")
	}
	role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
	if !ok {
		return 0, "", apperr.Unauthorizedf("User not authenticated")
	}
	return userID, role, nil
}
