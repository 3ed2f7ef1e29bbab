package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/config"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/httpx"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/logger"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/mail"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 10 * time.Minute

type RegisterRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Telephone string `json:"telephone" validate:"required,max=30"`
	Password  string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// CreateUser validates and stores a new account with a bcrypt-hashed password.
func CreateUser(ctx context.Context, db *gorm.DB, req RegisterRequest, role models.UserRole) (*models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Telephone = strings.TrimSpace(req.Telephone)
	if err := httpx.Validate(&req); err != nil {
		return nil, err
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, apperr.Wrap(err, "Server error during registration")
	}
	if count > 0 {
		return nil, apperr.Conflictf("User with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(err, "Server error during registration")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Telephone:    req.Telephone,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflictf("User with this email already exists")
		}
		return nil, apperr.Wrap(err, "Server error during registration")
	}
	return &user, nil
}

// sendTokenResponse issues the credential as both the body token and an HTTP-only cookie.
func sendTokenResponse(c *fiber.Ctx, cfg *config.Config, user *models.User, status int) error {
	token, err := GenerateToken(cfg.JWTSecret, user, cfg.JWTExpire)
	if err != nil {
		return apperr.Wrap(err, "Error generating authentication token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(time.Duration(cfg.CookieExpireDays) * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   cfg.IsProduction(),
	})
	return c.Status(status).JSON(httpx.Envelope{Success: true, Token: token})
}

func RegisterHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validationf("Invalid request body")
		}

		// self-registration never grants admin
		user, err := CreateUser(c.UserContext(), db, body, models.RoleUser)
		if err != nil {
			return err
		}
		return sendTokenResponse(c, cfg, user, fiber.StatusOK)
	}
}

func LoginHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		email := strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := db.WithContext(c.UserContext()).Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Unauthorizedf("Invalid credentials")
			}
			return apperr.Wrap(err, "Server error during login")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return apperr.Unauthorizedf("Invalid credentials")
		}

		return sendTokenResponse(c, cfg, &user, fiber.StatusOK)
	}
}

func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    "none",
			Expires:  time.Now().Add(10 * time.Second),
			HTTPOnly: true,
		})
		return httpx.OK(c, fiber.Map{})
	}
}

func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := Caller(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("User not found")
			}
			return apperr.Wrap(err, "Server error retrieving user data")
		}
		return httpx.OK(c, user)
	}
}

func ForgotPasswordHandler(db *gorm.DB, cfg *config.Config, mailer mail.Mailer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ForgotPasswordRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		ctx := c.UserContext()

		var user models.User
		if err := db.WithContext(ctx).Where("email = ?", strings.TrimSpace(strings.ToLower(body.Email))).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("No user found with that email")
			}
			return apperr.Wrap(err, "Server error during forgot password")
		}

		raw, hash, err := NewResetToken()
		if err != nil {
			return apperr.Wrap(err, "Server error during forgot password")
		}
		expire := time.Now().Add(resetTokenTTL)
		if err := db.WithContext(ctx).Model(&user).Updates(map[string]any{
			"reset_password_token":  hash,
			"reset_password_expire": expire,
		}).Error; err != nil {
			return apperr.Wrap(err, "Server error during forgot password")
		}

		resetURL := fmt.Sprintf("%s/api/v1/auth/resetpassword/%s", cfg.PublicBaseURL, raw)
		err = mailer.Send(ctx, mail.Message{
			To:      user.Email,
			Subject: "Password Reset Request",
			Text:    "You requested a password reset. Open this link to choose a new password: " + resetURL,
		})
		if err != nil {
			logger.Warningf("reset mail for user %d failed: %v", user.ID, err)
			if clearErr := clearResetToken(db.WithContext(ctx), user.ID); clearErr != nil {
				logger.Errorf("clearing reset token for user %d: %v", user.ID, clearErr)
			}
			return apperr.Wrap(err, "Email could not be sent")
		}

		return httpx.Message(c, "Email sent with reset link")
	}
}

func ResetPasswordHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ResetPasswordRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		ctx := c.UserContext()

		var user models.User
		err := db.WithContext(ctx).
			Where("reset_password_token = ? AND reset_password_expire > ?", HashResetToken(c.Params("token")), time.Now()).
			First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validationf("Invalid or expired token")
			}
			return apperr.Wrap(err, "Server error during reset password")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return apperr.Wrap(err, "Server error during reset password")
		}
		if err := db.WithContext(ctx).Model(&user).Updates(map[string]any{
			"password_hash":         string(hash),
			"reset_password_token":  nil,
			"reset_password_expire": nil,
		}).Error; err != nil {
			return apperr.Wrap(err, "Server error during reset password")
		}

		return httpx.Message(c, "Password reset successful")
	}
}

func clearResetToken(db *gorm.DB, userID uint) error {
	return db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"reset_password_token":  nil,
		"reset_password_expire": nil,
	}).Error
}

// PurgeExpiredResetTokens clears reset tokens whose expiry has passed.
func PurgeExpiredResetTokens(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Model(&models.User{}).
		Where("reset_password_expire IS NOT NULL AND reset_password_expire <= ?", now).
		Updates(map[string]any{
			"reset_password_token":  nil,
			"reset_password_expire": nil,
		})
	return res.RowsAffected, res.Error
}
