package services

import (
	"context"
	"errors"

	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/store"
)

// ContentGate decides who may read and write posts and comments, based on
// the viewer -> author edge.
type ContentGate struct {
	store store.Store
}

func NewContentGate(st store.Store) *ContentGate {
	return &ContentGate{store: st}
}

// WithStore returns a gate reading through st, typically a transaction.
func (g *ContentGate) WithStore(st store.Store) *ContentGate {
	return &ContentGate{store: st}
}

// AuthorizeRead returns the post when the viewer is its author or holds an
// accepted edge to the author. A missing post is NOT_FOUND whatever the
// relationship.
func (g *ContentGate) AuthorizeRead(ctx context.Context, viewerID, postID string) (*models.Post, error) {
	post, err := g.store.GetPost(ctx, postID)
	if err != nil {
		return nil, storeErr(err, "post not found")
	}
	ok, err := hasAccess(ctx, g.store, viewerID, post.AuthorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Forbidden("follow the author to see this post")
	}
	return post, nil
}

// AuthorizePostWrite returns the post when the viewer wrote it.
func (g *ContentGate) AuthorizePostWrite(ctx context.Context, viewerID, postID string) (*models.Post, error) {
	post, err := g.store.GetPost(ctx, postID)
	if err != nil {
		return nil, storeErr(err, "post not found")
	}
	if post.AuthorID != viewerID {
		return nil, Forbidden("only the author can change this post")
	}
	return post, nil
}

// AuthorizeCommentWrite returns the comment when the viewer wrote it.
func (g *ContentGate) AuthorizeCommentWrite(ctx context.Context, viewerID, commentID string) (*models.Comment, error) {
	comment, err := g.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, "comment not found")
	}
	if comment.AuthorID != viewerID {
		return nil, Forbidden("only the author can change this comment")
	}
	return comment, nil
}

// scopedWriteErr converts the result of an author-scoped write that ran after
// the author was verified. Zero rows there means the content changed hands or
// vanished in between and is reported as FORBIDDEN, never as success.
func scopedWriteErr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return Forbidden(msg)
	}
	return storeErr(err, msg)
}

// hasAccess reports whether viewerID may see ownerID's content.
func hasAccess(ctx context.Context, st store.Follows, viewerID, ownerID string) (bool, error) {
	if viewerID == ownerID {
		return true, nil
	}
	return hasAcceptedEdge(ctx, st, viewerID, ownerID)
}

// findVisibleUser loads a user that has completed onboarding. Accounts that
// have not are not visible to others.
func findVisibleUser(ctx context.Context, st store.Users, id string) (*models.User, error) {
	user, err := st.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	if !user.Onboarded {
		return nil, NotFound("user not found")
	}
	return user, nil
}
