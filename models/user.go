package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	Email        string     `gorm:"uniqueIndex;not null" json:"-"`
	PasswordHash *string    `json:"-"` // nil for Google-only accounts
	GoogleID     *string    `gorm:"uniqueIndex" json:"-"`
	Name         string     `json:"name"`
	Username     *string    `gorm:"uniqueIndex" json:"username"` // set at onboarding
	Image        string     `json:"image"`
	ImageKey     string     `json:"-"` // object key on the image host, empty for external images
	Bio          string     `json:"bio"`
	Birthday     *time.Time `json:"birthday"`
	Gender       string     `gorm:"type:varchar(20)" json:"gender"`
	Onboarded    bool       `gorm:"not null;default:false" json:"onboarded"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Handle returns the username or an empty string before onboarding.
func (u *User) Handle() string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}
