package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visibility controls whether non-owners may read a project.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Project is a named repository owned by exactly one user. Identifier is
// "<owner username>/<name>" and is unique among active projects.
type Project struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Identifier  string     `gorm:"size:120;not null;index:idx_projects_active_identifier,unique,where:is_active = true" json:"identifier"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Description string     `json:"description,omitempty"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"ownerId"`
	Owner       *User      `gorm:"foreignKey:OwnerID" json:"-"`
	Visibility  Visibility `gorm:"size:16;not null;default:public" json:"visibility"`
	IsActive    bool       `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProjectIdentifier joins an owner username and a project name.
func ProjectIdentifier(owner, name string) string {
	return owner + "/" + name
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
