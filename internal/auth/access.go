package auth

import "github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"

// CanAccess reports whether the actor may read or change a resource owned by ownerID.
func CanAccess(actorID uint, role models.UserRole, ownerID uint) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleUser:
		return actorID == ownerID
	}
	return false
}
