package services

import (
	"context"
	"strings"

	"github.com/benjibook/api-go/events"
	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/store"
)

const maxCommentTextLength = 1000

type CommentService struct {
	store  store.Store
	gate   *ContentGate
	events events.Publisher
}

func NewCommentService(st store.Store, gate *ContentGate, pub events.Publisher) *CommentService {
	return &CommentService{store: st, gate: gate, events: pub}
}

func validCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", BadRequest("comment text is required")
	}
	if len([]rune(text)) > maxCommentTextLength {
		return "", BadRequest("comment text is too long")
	}
	return text, nil
}

// List returns the post's comments, oldest first.
func (s *CommentService) List(ctx context.Context, viewerID, postID string) ([]CommentView, error) {
	if _, err := s.gate.AuthorizeRead(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, Internal("failed to list comments", err)
	}
	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentViewOf(c))
	}
	return out, nil
}

// Leave comments on a post the viewer can read and returns the comment id.
func (s *CommentService) Leave(ctx context.Context, viewerID, postID, text string) (string, error) {
	text, err := validCommentText(text)
	if err != nil {
		return "", err
	}
	if _, err := s.gate.AuthorizeRead(ctx, viewerID, postID); err != nil {
		return "", err
	}

	comment := &models.Comment{AuthorID: viewerID, PostID: postID, Text: text}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return "", storeErr(err, "post not found")
	}

	publish(s.events, events.CommentCreated, events.CommentCreatedEvent{
		CommentID: comment.ID,
		PostID:    postID,
		AuthorID:  viewerID,
		CreatedAt: comment.CreatedAt,
	})
	return comment.ID, nil
}

// UpdateText replaces the text of the viewer's own comment.
func (s *CommentService) UpdateText(ctx context.Context, viewerID, commentID, text string) error {
	text, err := validCommentText(text)
	if err != nil {
		return err
	}
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := s.gate.WithStore(tx).AuthorizeCommentWrite(ctx, viewerID, commentID); err != nil {
			return err
		}
		return scopedWriteErr(tx.UpdateCommentText(ctx, commentID, viewerID, text), "only the author can change this comment")
	})
	return storeErr(err, "failed to update comment")
}

// Delete removes the viewer's own comment.
func (s *CommentService) Delete(ctx context.Context, viewerID, commentID string) error {
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := s.gate.WithStore(tx).AuthorizeCommentWrite(ctx, viewerID, commentID); err != nil {
			return err
		}
		return scopedWriteErr(tx.DeleteComment(ctx, commentID, viewerID), "only the author can delete this comment")
	})
	return storeErr(err, "failed to delete comment")
}
