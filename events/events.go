package events

import (
	"time"
)

const (
	FollowRequested     = "follow.requested"
	FollowStatusChanged = "follow.status_changed"
	FollowRemoved       = "follow.removed"
	PostCreated         = "post.created"
	PostLiked           = "post.liked"
	CommentCreated      = "comment.created"
	ImageCleanupFailed  = "image.cleanup_failed"
)

// Publisher delivers domain events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(subject string, payload interface{}) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(string, interface{}) error { return nil }

// Event payloads

type FollowEvent struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	Status      string    `json:"status,omitempty"`
	ActorID     string    `json:"actor_id"`
	At          time.Time `json:"at"`
}

type PostCreatedEvent struct {
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type PostLikedEvent struct {
	PostID   string    `json:"post_id"`
	AuthorID string    `json:"author_id"`
	UserID   string    `json:"user_id"`
	At       time.Time `json:"at"`
}

type CommentCreatedEvent struct {
	CommentID string    `json:"comment_id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ImageCleanupFailedEvent struct {
	Keys   []string  `json:"keys"`
	Reason string    `json:"reason"`
	Error  string    `json:"error"`
	At     time.Time `json:"at"`
}
