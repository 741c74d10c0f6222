package entities

import (
	"time"

	"gorm.io/gorm"
)

// User is the minimal identity record behind bearer tokens.
// Sign-in and session handling live with the authentication provider.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:100" json:"username"`
	TokenHash string    `gorm:"uniqueIndex;size:64" json:"-"` // SHA-256 of the API token
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}
