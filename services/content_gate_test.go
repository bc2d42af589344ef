package services

import (
	"context"
	"testing"

	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentListAccess(t *testing.T) {
	env := newTestEnv(t)
	author, reader, stranger := env.user(t, "author"), env.user(t, "reader"), env.user(t, "stranger")
	post := env.post(t, author, "hello")
	env.comment(t, author, post, "first")
	env.edge(t, reader, author, models.FollowAccepted)

	_, err := env.svc.Comments.List(env.ctx, stranger.ID, post.ID)
	requireKind(t, err, KindForbidden)

	for _, viewer := range []*models.User{author, reader} {
		comments, err := env.svc.Comments.List(env.ctx, viewer.ID, post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "first", comments[0].Text)
		assert.Equal(t, author.ID, comments[0].Author.ID)
	}
}

func TestCommentListPendingOrDeniedIsForbidden(t *testing.T) {
	for _, status := range []models.FollowStatus{models.FollowPending, models.FollowDenied} {
		env := newTestEnv(t)
		author, viewer := env.user(t, "author"), env.user(t, "viewer")
		post := env.post(t, author, "hello")
		env.edge(t, viewer, author, status)
		// The reverse direction grants nothing.
		env.edge(t, author, viewer, models.FollowAccepted)

		_, err := env.svc.Comments.List(env.ctx, viewer.ID, post.ID)
		requireKind(t, err, KindForbidden)
	}
}

func TestMissingPostIsNotFoundRegardlessOfRelationship(t *testing.T) {
	env := newTestEnv(t)
	author, reader, stranger := env.user(t, "author"), env.user(t, "reader"), env.user(t, "stranger")
	env.edge(t, reader, author, models.FollowAccepted)
	missing := "7f0d2c4e-0000-4000-8000-000000000000"

	for _, viewer := range []*models.User{author, reader, stranger} {
		_, err := env.svc.Comments.List(env.ctx, viewer.ID, missing)
		requireKind(t, err, KindNotFound)
		_, err = env.svc.Posts.Likes(env.ctx, viewer.ID, missing)
		requireKind(t, err, KindNotFound)
		_, err = env.svc.Posts.Get(env.ctx, viewer.ID, missing)
		requireKind(t, err, KindNotFound)
	}
}

func TestCommentUpdateByOtherUserIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	author, other := env.user(t, "author"), env.user(t, "other")
	post := env.post(t, author, "hello")
	comment := env.comment(t, author, post, "original")

	err := env.svc.Comments.UpdateText(env.ctx, other.ID, comment.ID, "hijacked")
	requireKind(t, err, KindForbidden)
	err = env.svc.Comments.Delete(env.ctx, other.ID, comment.ID)
	requireKind(t, err, KindForbidden)

	stored, err := env.store.GetComment(env.ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Text)

	require.NoError(t, env.svc.Comments.UpdateText(env.ctx, author.ID, comment.ID, "edited"))
	stored, err = env.store.GetComment(env.ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Text)

	require.NoError(t, env.svc.Comments.Delete(env.ctx, author.ID, comment.ID))
	err = env.svc.Comments.Delete(env.ctx, author.ID, comment.ID)
	requireKind(t, err, KindNotFound)
}

// zeroRowStore makes every author-scoped write match nothing, as if the
// content changed between the check and the write.
type zeroRowStore struct {
	*store.GormStore
}

func (s zeroRowStore) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

func (s zeroRowStore) UpdateCommentText(ctx context.Context, id, authorID, text string) error {
	return store.ErrNotFound
}

func (s zeroRowStore) DeletePost(ctx context.Context, id, authorID string) error {
	return store.ErrNotFound
}

func TestZeroRowWritesAreForbidden(t *testing.T) {
	env := newTestEnv(t)
	author := env.user(t, "author")
	post := env.post(t, author, "hello")
	comment := env.comment(t, author, post, "original")

	st := zeroRowStore{env.store}
	gate := NewContentGate(st)
	comments := NewCommentService(st, gate, env.events)
	posts := NewPostService(st, gate, env.images, env.events)

	err := comments.UpdateText(env.ctx, author.ID, comment.ID, "edited")
	requireKind(t, err, KindForbidden)

	_, err = posts.Delete(env.ctx, author.ID, post.ID)
	requireKind(t, err, KindForbidden)
	assert.Empty(t, env.images.deleted)
}

func TestLeaveCommentRequiresReadAccess(t *testing.T) {
	env := newTestEnv(t)
	author, reader, stranger := env.user(t, "author"), env.user(t, "reader"), env.user(t, "stranger")
	post := env.post(t, author, "hello")
	env.edge(t, reader, author, models.FollowAccepted)

	_, err := env.svc.Comments.Leave(env.ctx, stranger.ID, post.ID, "hi")
	requireKind(t, err, KindForbidden)

	_, err = env.svc.Comments.Leave(env.ctx, reader.ID, post.ID, "   ")
	requireKind(t, err, KindBadRequest)

	id, err := env.svc.Comments.Leave(env.ctx, reader.ID, post.ID, " hi ")
	require.NoError(t, err)
	stored, err := env.store.GetComment(env.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hi", stored.Text)
	assert.Equal(t, reader.ID, stored.AuthorID)
}
