package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Commit records a change pushed to a project.
type Commit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"projectId"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"-"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"authorId"`
	Message   string    `gorm:"not null" json:"message"`
	Hash      string    `gorm:"size:64;not null" json:"hash"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (c *Commit) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
