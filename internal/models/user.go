package models

import (
	"fmt"
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// ParseRole accepts only the two known roles.
func ParseRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Name         string   `gorm:"size:100;not null" json:"name"`
	Email        string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Telephone    string   `gorm:"size:30;not null" json:"telephone"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Role         UserRole `gorm:"size:20;not null;default:user" json:"role"`

	// sha256 of the emailed reset token
	ResetPasswordToken  *string    `gorm:"size:64;index" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
