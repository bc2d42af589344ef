package services

import (
	"fmt"
	"math"
	"time"

	"github.com/benjibook/api-go/models"
	"github.com/jinzhu/copier"
)

// UserCard is the smallest public projection of a user, used in lists.
type UserCard struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Username *string `json:"username"`
	Image    string  `json:"image"`
}

func cardOf(u models.User) UserCard {
	var card UserCard
	// Same-named fields only, cannot fail for these types.
	_ = copier.Copy(&card, &u)
	return card
}

// Relationship is one edge seen from the listing user's side.
type Relationship struct {
	User         UserCard            `json:"user"`
	Status       models.FollowStatus `json:"status"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	FollowedBack bool                `json:"followedBack"`
}

type CommentView struct {
	models.Comment
	Author UserCard `json:"author"`
}

func commentViewOf(c models.Comment) CommentView {
	return CommentView{Comment: c, Author: cardOf(c.Author)}
}

type PostView struct {
	models.Post
	Author        UserCard      `json:"author"`
	LikedByViewer bool          `json:"likedByViewer"`
	Comments      []CommentView `json:"comments,omitempty"`
}

type LikeView struct {
	User    UserCard  `json:"user"`
	LikedAt time.Time `json:"likedAt"`
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = math.MaxInt32 / maxPageSize
)

// normalizePage clamps sizes to [1, maxPageSize] and page numbers to >= 1.
// Pages past maxPage are rejected so the row offset stays within an int32.
func normalizePage(page, size int) (int, int, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		return 0, 0, BadRequest(fmt.Sprintf("page must be at most %d", maxPage))
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size, nil
}
