package auth

import (
	"testing"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name    string
		actor   uint
		role    models.UserRole
		owner   uint
		allowed bool
	}{
		{"owner", 7, models.RoleUser, 7, true},
		{"other user", 7, models.RoleUser, 8, false},
		{"admin on any", 1, models.RoleAdmin, 8, true},
		{"admin on own", 1, models.RoleAdmin, 1, true},
		{"unknown role", 7, models.UserRole("guest"), 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanAccess(tt.actor, tt.role, tt.owner))
		})
	}
}
