package models

import (
	"time"
)

// Like marks that UserID liked PostID. Presence of the row is the like.
type Like struct {
	UserID    string    `gorm:"type:uuid;primaryKey" json:"userId"`
	PostID    string    `gorm:"type:uuid;primaryKey;index" json:"postId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}
