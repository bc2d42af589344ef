// Package store persists users, posts, comments, likes and follow edges.
//
// GormStore implements the Store contract over Postgres, or over an
// in-process SQLite database from OpenMemory for local development and
// tests. Author-scoped writes return
// ErrNotFound when no row matched, so callers can tell a mismatched author
// from a successful write.
package store

import (
	"context"
	"errors"

	"github.com/benjibook/api-go/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type Users interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// DeleteUser removes the user with every post, comment, like and follow
	// edge that references it.
	DeleteUser(ctx context.Context, id string) error
	SearchUsers(ctx context.Context, query string, limit, offset int) ([]models.User, int64, error)
}

type Follows interface {
	GetFollow(ctx context.Context, followerID, followingID string) (*models.Follow, error)
	// PutFollow inserts the edge or overwrites status and updatedAt of the
	// existing edge for the same ordered pair.
	PutFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID string) error
	CountFollowers(ctx context.Context, userID string, status models.FollowStatus) (int64, error)
	CountFollowing(ctx context.Context, userID string, status models.FollowStatus) (int64, error)
	// ListFollowers returns incoming edges with Follower loaded, newest first.
	ListFollowers(ctx context.Context, userID string, statuses ...models.FollowStatus) ([]models.Follow, error)
	// ListFollowing returns outgoing edges with Following loaded, newest first.
	ListFollowing(ctx context.Context, userID string, statuses ...models.FollowStatus) ([]models.Follow, error)
}

type Posts interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	UpdatePostText(ctx context.Context, id, authorID, text string, hashtags []string) error
	// DeletePost removes the post with its likes and comments.
	DeletePost(ctx context.Context, id, authorID string) error
	ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	ListFeed(ctx context.Context, authorIDs []string, limit, offset int) ([]models.Post, int64, error)
}

type Comments interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	UpdateCommentText(ctx context.Context, id, authorID, text string) error
	DeleteComment(ctx context.Context, id, authorID string) error
	// ListComments returns the post's comments with Author loaded, oldest first.
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
}

type Likes interface {
	GetLike(ctx context.Context, userID, postID string) (*models.Like, error)
	PutLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, userID, postID string) error
	// ListLikes returns the post's likes with User loaded.
	ListLikes(ctx context.Context, postID string) ([]models.Like, error)
	// ListLikedPosts returns the user's likes with Post loaded, newest first.
	ListLikedPosts(ctx context.Context, userID string) ([]models.Like, error)
}

type Store interface {
	Users
	Follows
	Posts
	Comments
	Likes

	// Transaction runs fn against a store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
