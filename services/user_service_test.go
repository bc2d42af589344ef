package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/benjibook/api-go/imagehost"
	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func (e *testEnv) newcomer(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email}
	require.NoError(t, e.store.CreateUser(e.ctx, u))
	return u
}

func TestCompleteOnboarding(t *testing.T) {
	env := newTestEnv(t)
	u := env.newcomer(t, "new@example.com")

	_, err := env.svc.Follows.SendRequest(env.ctx, env.user(t, "alice").ID, u.ID)
	requireKind(t, err, KindNotFound)

	_, _, err = env.svc.Users.CompleteOnboarding(env.ctx, u.ID, ProfileInput{Username: strPtr("newbie")})
	requireKind(t, err, KindBadRequest)

	birthday := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	key := env.images.upload(imagehost.KindProfile, u.ID)
	user, orphaned, err := env.svc.Users.CompleteOnboarding(env.ctx, u.ID, ProfileInput{
		Name:     strPtr(" New Person "),
		Username: strPtr("newbie"),
		Birthday: &birthday,
		Gender:   strPtr("other"),
		ImageKey: &key,
	})
	require.NoError(t, err)
	assert.Empty(t, orphaned)
	assert.True(t, user.Onboarded)
	assert.Equal(t, "New Person", user.Name)
	assert.Equal(t, "newbie", user.Handle())
	assert.Equal(t, "https://cdn.test/"+key, user.Image)

	_, _, err = env.svc.Users.CompleteOnboarding(env.ctx, u.ID, ProfileInput{Name: strPtr("x"), Username: strPtr("again")})
	requireKind(t, err, KindBadRequest)
}

func TestProfileValidation(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "taken")
	u := env.user(t, "someone")
	future := time.Now().Add(48 * time.Hour)

	cases := map[string]ProfileInput{
		"duplicate username": {Username: strPtr("taken")},
		"short username":     {Username: strPtr("ab")},
		"leading digit":      {Username: strPtr("1abc")},
		"reserved username":  {Username: strPtr("Admin")},
		"empty name":         {Name: strPtr("  ")},
		"future birthday":    {Birthday: &future},
		"unknown gender":     {Gender: strPtr("robot")},
		"foreign image":      {ImageKey: strPtr(env.images.upload(imagehost.KindProfile, "someone-else"))},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := env.svc.Users.UpdateProfile(env.ctx, u.ID, in)
			require.Error(t, err)
			assert.Contains(t, []Kind{KindBadRequest, KindForbidden}, KindOf(err))
		})
	}

	stored, err := env.store.GetUser(env.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "someone", stored.Handle())
	assert.Equal(t, "Name someone", stored.Name)
}

func TestUpdateProfileReplacesImage(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "someone")
	first := env.images.upload(imagehost.KindProfile, u.ID)
	second := env.images.upload(imagehost.KindProfile, u.ID)

	_, _, err := env.svc.Users.UpdateProfile(env.ctx, u.ID, ProfileInput{ImageKey: &first})
	require.NoError(t, err)
	assert.Empty(t, env.images.deleted)

	user, orphaned, err := env.svc.Users.UpdateProfile(env.ctx, u.ID, ProfileInput{ImageKey: &second, Bio: strPtr("hello")})
	require.NoError(t, err)
	assert.Empty(t, orphaned)
	assert.Equal(t, []string{first}, env.images.deleted)
	assert.Equal(t, "hello", user.Bio)

	env.images.deleteErr = errors.New("timeout")
	user, orphaned, err = env.svc.Users.UpdateProfile(env.ctx, u.ID, ProfileInput{ImageKey: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, []string{second}, orphaned)
	assert.Empty(t, user.Image)
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	u, friend := env.user(t, "leaving"), env.user(t, "friend")
	env.edge(t, u, friend, models.FollowAccepted)
	env.edge(t, friend, u, models.FollowAccepted)

	avatar := env.images.upload(imagehost.KindProfile, u.ID)
	_, _, err := env.svc.Users.UpdateProfile(env.ctx, u.ID, ProfileInput{ImageKey: &avatar})
	require.NoError(t, err)

	photo := env.images.upload(imagehost.KindPost, u.ID)
	own := &models.Post{AuthorID: u.ID, ImageKey: photo}
	require.NoError(t, env.store.CreatePost(env.ctx, own))
	friendsPost := env.post(t, friend, "hi")
	c := env.comment(t, u, friendsPost, "hey")
	require.NoError(t, env.store.PutLike(env.ctx, &models.Like{UserID: u.ID, PostID: friendsPost.ID}))

	result, err := env.svc.Users.DeleteAccount(env.ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, result.OrphanedImages)
	assert.ElementsMatch(t, []string{avatar, photo}, env.images.deleted)

	_, err = env.store.GetUser(env.ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.store.GetPost(env.ctx, own.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.store.GetComment(env.ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, noEdge, env.edgeStatus(t, friend, u))

	profile, err := env.svc.Profiles.ResolveProfile(env.ctx, friend.ID, friend.ID)
	require.NoError(t, err)
	assert.Zero(t, profile.FollowersCount)
	assert.Zero(t, profile.FollowingCount)

	_, err = env.svc.Users.DeleteAccount(env.ctx, u.ID)
	requireKind(t, err, KindNotFound)
}

func TestSearchUsers(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alice")
	env.user(t, "alicia")
	env.user(t, "bob")
	env.newcomer(t, "hidden@example.com")

	page, err := env.svc.Users.Search(env.ctx, "ALI", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Name alice", page.Items[0].Name)
	assert.Equal(t, "Name alicia", page.Items[1].Name)

	_, err = env.svc.Users.Search(env.ctx, "  ", 1, 10)
	requireKind(t, err, KindBadRequest)

	_, err = env.svc.Users.Search(env.ctx, "ali", math.MaxInt, 10)
	requireKind(t, err, KindBadRequest)
}
