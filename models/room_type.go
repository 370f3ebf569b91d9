package models

import (
	"time"

	"gorm.io/gorm"
)

// RoomType is the catalogue of room categories a room can be onboarded with.
type RoomType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TypeName    string `json:"typeName" gorm:"uniqueIndex;size:64;not null"`
	Description string `json:"description"`
	MaxGuests   uint   `json:"maxGuests"`

	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
