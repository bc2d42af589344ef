package services

import (
	"errors"
	"math"
	"testing"

	"github.com/benjibook/api-go/events"
	"github.com/benjibook/api-go/imagehost"
	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	author := env.user(t, "author")
	key := env.images.upload(imagehost.KindPost, author.ID)

	view, err := env.svc.Posts.Create(env.ctx, author.ID, CreatePostInput{
		Text:     "  Sunset at the pier #Beach #sunset, #beach  ",
		ImageKey: key,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sunset at the pier #Beach #sunset, #beach", view.Text)
	assert.Equal(t, []string{"beach", "sunset"}, []string(view.Hashtags))
	assert.Equal(t, "https://cdn.test/"+key, view.ImageURL)
	assert.Equal(t, author.ID, view.Author.ID)
	assert.Equal(t, []string{events.PostCreated}, env.events.subjects())
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	author, other := env.user(t, "author"), env.user(t, "other")
	fresh := &models.User{Email: "fresh@example.com"}
	require.NoError(t, env.store.CreateUser(env.ctx, fresh))

	_, err := env.svc.Posts.Create(env.ctx, author.ID, CreatePostInput{Text: "   "})
	requireKind(t, err, KindBadRequest)

	_, err = env.svc.Posts.Create(env.ctx, fresh.ID, CreatePostInput{Text: "hi"})
	requireKind(t, err, KindForbidden)

	othersKey := env.images.upload(imagehost.KindPost, other.ID)
	_, err = env.svc.Posts.Create(env.ctx, author.ID, CreatePostInput{ImageKey: othersKey})
	requireKind(t, err, KindForbidden)

	profileKey := env.images.upload(imagehost.KindProfile, author.ID)
	_, err = env.svc.Posts.Create(env.ctx, author.ID, CreatePostInput{ImageKey: profileKey})
	requireKind(t, err, KindForbidden)

	notUploaded := imagehost.NewKey(imagehost.KindPost, author.ID, "a.png")
	_, err = env.svc.Posts.Create(env.ctx, author.ID, CreatePostInput{ImageKey: notUploaded})
	requireKind(t, err, KindBadRequest)

	posts, err := env.store.ListPostsByAuthor(env.ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestUpdatePostTextOnlyByAuthor(t *testing.T) {
	env := newTestEnv(t)
	author, follower := env.user(t, "author"), env.user(t, "follower")
	env.edge(t, follower, author, models.FollowAccepted)
	post := env.post(t, author, "before")

	_, err := env.svc.Posts.UpdateText(env.ctx, follower.ID, post.ID, "after")
	requireKind(t, err, KindForbidden)

	view, err := env.svc.Posts.UpdateText(env.ctx, author.ID, post.ID, "after #edit")
	require.NoError(t, err)
	assert.Equal(t, "after #edit", view.Text)
	assert.Equal(t, []string{"edit"}, []string(view.Hashtags))

	_, err = env.svc.Posts.UpdateText(env.ctx, author.ID, post.ID, "")
	requireKind(t, err, KindBadRequest)
}

func TestDeletePostCascadesAndRemovesImage(t *testing.T) {
	env := newTestEnv(t)
	author, fan := env.user(t, "author"), env.user(t, "fan")
	env.edge(t, fan, author, models.FollowAccepted)
	key := env.images.upload(imagehost.KindPost, author.ID)
	post := &models.Post{AuthorID: author.ID, Text: "bye", ImageKey: key}
	require.NoError(t, env.store.CreatePost(env.ctx, post))
	comment := env.comment(t, fan, post, "nice")
	require.NoError(t, env.store.PutLike(env.ctx, &models.Like{UserID: fan.ID, PostID: post.ID}))

	_, err := env.svc.Posts.Delete(env.ctx, fan.ID, post.ID)
	requireKind(t, err, KindForbidden)
	_, err = env.store.GetPost(env.ctx, post.ID)
	require.NoError(t, err)

	result, err := env.svc.Posts.Delete(env.ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, result.OrphanedImages)
	assert.Equal(t, []string{key}, env.images.deleted)

	_, err = env.store.GetPost(env.ctx, post.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.store.GetComment(env.ctx, comment.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.store.GetLike(env.ctx, fan.ID, post.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = env.svc.Posts.Delete(env.ctx, author.ID, post.ID)
	requireKind(t, err, KindNotFound)
}

func TestDeletePostReportsOrphanedImage(t *testing.T) {
	env := newTestEnv(t)
	author := env.user(t, "author")
	key := env.images.upload(imagehost.KindPost, author.ID)
	post := &models.Post{AuthorID: author.ID, ImageKey: key}
	require.NoError(t, env.store.CreatePost(env.ctx, post))
	env.images.deleteErr = errors.New("bucket unavailable")

	result, err := env.svc.Posts.Delete(env.ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, result.OrphanedImages)

	// The rows are gone even though the image is not.
	_, err = env.store.GetPost(env.ctx, post.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.Equal(t, []string{events.ImageCleanupFailed}, env.events.subjects())
	payload, ok := env.events.events[0].payload.(events.ImageCleanupFailedEvent)
	require.True(t, ok)
	assert.Equal(t, []string{key}, payload.Keys)
	assert.Equal(t, "bucket unavailable", payload.Error)
}

func TestToggleLike(t *testing.T) {
	env := newTestEnv(t)
	author, fan, stranger := env.user(t, "author"), env.user(t, "fan"), env.user(t, "stranger")
	env.edge(t, fan, author, models.FollowAccepted)
	post := env.post(t, author, "like me")

	_, err := env.svc.Posts.ToggleLike(env.ctx, stranger.ID, post.ID, true)
	requireKind(t, err, KindForbidden)

	for i := 0; i < 2; i++ {
		id, err := env.svc.Posts.ToggleLike(env.ctx, fan.ID, post.ID, true)
		require.NoError(t, err)
		assert.Equal(t, post.ID, id)
	}
	likes, err := env.svc.Posts.Likes(env.ctx, author.ID, post.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, fan.ID, likes[0].User.ID)

	_, err = env.svc.Posts.Likes(env.ctx, stranger.ID, post.ID)
	requireKind(t, err, KindForbidden)

	for i := 0; i < 2; i++ {
		_, err := env.svc.Posts.ToggleLike(env.ctx, fan.ID, post.ID, false)
		require.NoError(t, err)
	}
	likes, err = env.svc.Posts.Likes(env.ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)
}

func TestFeedIncludesOwnAndAcceptedFollowings(t *testing.T) {
	env := newTestEnv(t)
	me, friend, pending, stranger := env.user(t, "me"), env.user(t, "friend"), env.user(t, "pending"), env.user(t, "stranger")
	env.edge(t, me, friend, models.FollowAccepted)
	env.edge(t, me, pending, models.FollowPending)
	mine := env.post(t, me, "mine")
	theirs := env.post(t, friend, "theirs")
	env.post(t, pending, "not yet")
	env.post(t, stranger, "never")

	page, err := env.svc.Posts.Feed(env.ctx, me.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, theirs.ID, page.Items[0].ID)
	assert.Equal(t, mine.ID, page.Items[1].ID)

	page, err = env.svc.Posts.Feed(env.ctx, me.ID, 2, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)

	page, err = env.svc.Posts.Feed(env.ctx, me.ID, 3, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, int64(2), page.Total)

	_, err = env.svc.Posts.Feed(env.ctx, me.ID, math.MaxInt/10, 20)
	requireKind(t, err, KindBadRequest)
	_, err = env.svc.Posts.Feed(env.ctx, me.ID, maxPage+1, maxPageSize)
	requireKind(t, err, KindBadRequest)
	page, err = env.svc.Posts.Feed(env.ctx, me.ID, maxPage, maxPageSize)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, maxPage, page.Page)
}

func TestExtractHashtags(t *testing.T) {
	assert.Equal(t, []string{}, extractHashtags("no tags here"))
	assert.Equal(t, []string{"go", "golang_2"}, extractHashtags("#Go is fun! #golang_2. #go #"))
}
