package models

import (
	"time"
)

type FollowStatus string

const (
	FollowPending  FollowStatus = "pending"
	FollowAccepted FollowStatus = "accepted"
	FollowDenied   FollowStatus = "denied"
)

func (s FollowStatus) Valid() bool {
	switch s {
	case FollowPending, FollowAccepted, FollowDenied:
		return true
	}
	return false
}

// Follow is a directed edge from FollowerID to FollowingID. There is at most
// one edge per ordered pair.
type Follow struct {
	FollowerID  string       `gorm:"type:uuid;primaryKey" json:"followerId"`
	FollowingID string       `gorm:"type:uuid;primaryKey" json:"followingId"`
	Status      FollowStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	Follower  User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Following User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
}
