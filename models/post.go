package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Post struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	AuthorID  string         `gorm:"type:uuid;not null;index" json:"authorId"`
	Author    User           `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Text      string         `gorm:"type:text" json:"text"`
	ImageURL  string         `json:"imageUrl"`
	ImageKey  string         `json:"-"`
	Hashtags  pq.StringArray `gorm:"type:text[]" json:"hashtags"`
	Comments  []Comment      `gorm:"foreignKey:PostID" json:"-"`
	Likes     []Like         `gorm:"foreignKey:PostID" json:"-"`

	// Aggregates filled by list queries.
	LikesCount    int64 `gorm:"->;-:migration" json:"likesCount"`
	CommentsCount int64 `gorm:"->;-:migration" json:"commentsCount"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
