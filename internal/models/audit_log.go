package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	UserID uint `gorm:"index" json:"userId"`

	// "reservation" or "venue"
	EntityType string `gorm:"size:50;index" json:"entityType"`
	EntityID   uint   `gorm:"index" json:"entityId"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	BeforeData string `gorm:"type:jsonb" json:"beforeData"`
	AfterData  string `gorm:"type:jsonb" json:"afterData"`
}
