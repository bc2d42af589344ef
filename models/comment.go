package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  string    `gorm:"type:uuid;not null;index" json:"authorId"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    string    `gorm:"type:uuid;not null;index" json:"postId"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
