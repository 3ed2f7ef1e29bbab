package models

import "time"

type Reservation struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"index;not null" json:"userId"`
	User      *User         `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	VenueID   uint          `gorm:"index;not null" json:"venueId"`
	Venue     *VenueSummary `gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE" json:"venue,omitempty"`
	ResvDate  time.Time     `gorm:"index;not null" json:"resvDate"`
	CreatedAt time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// MaxActiveReservations is the cap for non-admin users.
const MaxActiveReservations = 3
