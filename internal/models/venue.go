package models

import "time"

type Venue struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Address    string    `gorm:"size:255;not null" json:"address"`
	District   string    `gorm:"size:100;not null" json:"district"`
	Province   string    `gorm:"size:100;not null" json:"province"`
	PostalCode string    `gorm:"size:5;not null" json:"postalCode"`
	Tel        string    `gorm:"size:50" json:"tel"`
	Region     string    `gorm:"size:100;not null" json:"region"`
	OpenTime   string    `gorm:"size:5;not null" json:"openTime"`
	CloseTime  string    `gorm:"size:5;not null" json:"closeTime"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// VenueSummary is the part of a venue populated into a reservation.
type VenueSummary struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `json:"name"`
	Province string `json:"province"`
	Tel      string `json:"tel"`
}

func (VenueSummary) TableName() string { return "venues" }
