package store

import (
	"context"
	"testing"
	"time"

	"github.com/benjibook/api-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedError struct {
	code int
	msg  string
}

func (e codedError) Error() string { return e.msg }
func (e codedError) Code() int     { return e.code }

func TestSQLiteConstraintKind(t *testing.T) {
	tests := []struct {
		name string
		err  codedError
		want error
	}{
		{"unique", codedError{sqliteConstraintUnique, "UNIQUE constraint failed: users.email"}, ErrDuplicate},
		{"primary key", codedError{sqliteConstraintPrimaryKey, "UNIQUE constraint failed: likes.user_id"}, ErrDuplicate},
		{"foreign key", codedError{sqliteConstraintForeignKey, "FOREIGN KEY constraint failed"}, ErrNotFound},
		{"primary code foreign key", codedError{sqliteConstraint, "FOREIGN KEY constraint failed"}, ErrNotFound},
		{"primary code unique", codedError{sqliteConstraint, "UNIQUE constraint failed: users.username"}, ErrDuplicate},
		{"not null", codedError{1299, "NOT NULL constraint failed: users.email"}, nil},
		{"busy", codedError{5, "database is locked"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteConstraintKind(tt.err))
		})
	}

	assert.ErrorIs(t, translate(codedError{sqliteConstraintUnique, "UNIQUE"}, "create user"), ErrDuplicate)
}

func TestOpenMemoryIsPrivate(t *testing.T) {
	ctx := context.Background()
	first, second := openMemory(t), openMemory(t)

	u := mkUser(t, ctx, first, "alice")
	_, err := second.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Back-to-back writes keep their order.
	var posts []*models.Post
	for i := 0; i < 5; i++ {
		p := &models.Post{AuthorID: u.ID, Text: "post"}
		require.NoError(t, first.CreatePost(ctx, p))
		posts = append(posts, p)
	}
	feed, _, err := first.ListFeed(ctx, []string{u.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, len(posts))
	for i, p := range feed {
		assert.Equal(t, posts[len(posts)-1-i].ID, p.ID)
	}

	require.NoError(t, first.Close())
}

func TestIncreasingClock(t *testing.T) {
	now := newIncreasingClock()
	prev := now()
	for i := 0; i < 1000; i++ {
		next := now()
		require.True(t, next.After(prev), "clock went from %s to %s", prev, next)
		assert.Less(t, next.Sub(prev), time.Second)
		prev = next
	}
}
