package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benjibook/api-go/imagehost"
	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/store"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	mu        sync.Mutex
	uploaded  map[string]bool
	deleted   []string
	deleteErr error
}

func newFakeImages() *fakeImages {
	return &fakeImages{uploaded: map[string]bool{}}
}

func (f *fakeImages) PresignUpload(ctx context.Context, key, contentType string) (*imagehost.PresignedUpload, error) {
	return &imagehost.PresignedUpload{UploadURL: "https://upload.test/" + key, FileURL: f.PublicURL(key), Key: key}, nil
}

func (f *fakeImages) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploaded[key], nil
}

func (f *fakeImages) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, k := range keys {
		delete(f.uploaded, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

func (f *fakeImages) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (f *fakeImages) upload(kind imagehost.Kind, userID string) string {
	key := imagehost.NewKey(kind, userID, "photo.jpg")
	f.mu.Lock()
	f.uploaded[key] = true
	f.mu.Unlock()
	return key
}

type published struct {
	subject string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(subject string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject, payload})
	return p.err
}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.subject)
	}
	return out
}

type testEnv struct {
	ctx    context.Context
	store  *store.GormStore
	images *fakeImages
	events *recordingPublisher
	svc    *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	images := newFakeImages()
	pub := &recordingPublisher{}
	return &testEnv{
		ctx:    context.Background(),
		store:  st,
		images: images,
		events: pub,
		svc:    New(st, images, pub, Options{JWTSecret: "test-secret", TokenTTL: time.Hour}),
	}
}

// user creates an onboarded user.
func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	name := username
	u := &models.User{
		Email:     username + "@example.com",
		Name:      "Name " + username,
		Username:  &name,
		Onboarded: true,
	}
	require.NoError(t, e.store.CreateUser(e.ctx, u))
	return u
}

func (e *testEnv) edge(t *testing.T, from, to *models.User, status models.FollowStatus) {
	t.Helper()
	require.NoError(t, e.store.PutFollow(e.ctx, &models.Follow{FollowerID: from.ID, FollowingID: to.ID, Status: status}))
}

func (e *testEnv) edgeStatus(t *testing.T, from, to *models.User) models.FollowStatus {
	t.Helper()
	f, err := e.store.GetFollow(e.ctx, from.ID, to.ID)
	if errors.Is(err, store.ErrNotFound) {
		return noEdge
	}
	require.NoError(t, err)
	return f.Status
}

func (e *testEnv) post(t *testing.T, author *models.User, text string) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: author.ID, Text: text}
	require.NoError(t, e.store.CreatePost(e.ctx, p))
	return p
}

func (e *testEnv) comment(t *testing.T, author *models.User, post *models.Post, text string) *models.Comment {
	t.Helper()
	c := &models.Comment{AuthorID: author.ID, PostID: post.ID, Text: text}
	require.NoError(t, e.store.CreateComment(e.ctx, c))
	return c
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
}
