// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account holder that owns projects.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:15;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Name         string    `json:"name,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	PfpURL       string    `gorm:"column:pfp_url" json:"pfpUrl,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Projects     []Project `gorm:"foreignKey:OwnerID" json:"-"`
}

// BeforeCreate assigns a fresh identifier when the caller left it empty.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Profile is the non-secret view of a user returned to clients.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	PfpURL    string    `json:"pfpUrl,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile returns the user's public fields.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		Bio:       u.Bio,
		PfpURL:    u.PfpURL,
		CreatedAt: u.CreatedAt,
	}
}
