package model

import "time"

// User represents a registered wallet user.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name         string    `json:"name" gorm:"size:30;not null"`
	PhoneNumber  string    `json:"phone_number" gorm:"size:10;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Active       bool      `json:"active" gorm:"default:false"` // Email confirmed
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	UserCards []UserCard `json:"-" gorm:"foreignKey:UserID"`
}
