package services

import (
	"context"
	"strings"
	"unicode"

	"github.com/benjibook/api-go/events"
	"github.com/benjibook/api-go/imagehost"
	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/store"
)

const maxPostTextLength = 2200

type PostService struct {
	store   store.Store
	gate    *ContentGate
	images  imagehost.Host
	events  events.Publisher
	cleaner imageCleaner
}

func NewPostService(st store.Store, gate *ContentGate, images imagehost.Host, pub events.Publisher) *PostService {
	return &PostService{
		store:   st,
		gate:    gate,
		images:  images,
		events:  pub,
		cleaner: imageCleaner{images: images, events: pub},
	}
}

type CreatePostInput struct {
	Text string
	// ImageKey is the object key returned by the upload presign call.
	ImageKey string
}

// DeleteResult reports image objects that could not be removed from the
// image host after the rows were deleted.
type DeleteResult struct {
	OrphanedImages []string `json:"orphanedImages,omitempty"`
}

func (s *PostService) Get(ctx context.Context, viewerID, postID string) (*PostView, error) {
	post, err := s.gate.AuthorizeRead(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	views, err := buildPostViews(ctx, s.store, viewerID, []models.Post{*post}, true)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *PostService) Create(ctx context.Context, viewerID string, in CreatePostInput) (*PostView, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" && in.ImageKey == "" {
		return nil, BadRequest("a post needs text or an image")
	}
	if len([]rune(text)) > maxPostTextLength {
		return nil, BadRequest("post text is too long")
	}
	if err := requireOnboarded(ctx, s.store, viewerID); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: viewerID,
		Text:     text,
		Hashtags: extractHashtags(text),
	}
	if in.ImageKey != "" {
		if err := verifyUpload(ctx, s.images, in.ImageKey, imagehost.KindPost, viewerID); err != nil {
			return nil, err
		}
		post.ImageKey = in.ImageKey
		post.ImageURL = s.images.PublicURL(in.ImageKey)
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, storeErr(err, "failed to create post")
	}

	publish(s.events, events.PostCreated, events.PostCreatedEvent{
		PostID:    post.ID,
		AuthorID:  post.AuthorID,
		CreatedAt: post.CreatedAt,
	})
	return s.Get(ctx, viewerID, post.ID)
}

// UpdateText replaces the text of the viewer's own post.
func (s *PostService) UpdateText(ctx context.Context, viewerID, postID, text string) (*PostView, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) > maxPostTextLength {
		return nil, BadRequest("post text is too long")
	}

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		post, err := s.gate.WithStore(tx).AuthorizePostWrite(ctx, viewerID, postID)
		if err != nil {
			return err
		}
		if text == "" && post.ImageKey == "" {
			return BadRequest("a post needs text or an image")
		}
		return scopedWriteErr(tx.UpdatePostText(ctx, postID, viewerID, text, extractHashtags(text)), "only the author can change this post")
	})
	if err != nil {
		return nil, storeErr(err, "failed to update post")
	}
	return s.Get(ctx, viewerID, postID)
}

// Delete removes the viewer's own post with its likes and comments, then
// deletes its image from the image host.
func (s *PostService) Delete(ctx context.Context, viewerID, postID string) (*DeleteResult, error) {
	var imageKey string
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		post, err := s.gate.WithStore(tx).AuthorizePostWrite(ctx, viewerID, postID)
		if err != nil {
			return err
		}
		imageKey = post.ImageKey
		return scopedWriteErr(tx.DeletePost(ctx, postID, viewerID), "only the author can delete this post")
	})
	if err != nil {
		return nil, storeErr(err, "failed to delete post")
	}

	return &DeleteResult{OrphanedImages: s.cleaner.cleanup(ctx, "post deleted", imageKey)}, nil
}

// Feed pages through posts by the viewer and every user the viewer follows
// with an accepted edge, newest first.
func (s *PostService) Feed(ctx context.Context, viewerID string, page, size int) (*Page[PostView], error) {
	page, size, err := normalizePage(page, size)
	if err != nil {
		return nil, err
	}

	following, err := s.store.ListFollowing(ctx, viewerID, models.FollowAccepted)
	if err != nil {
		return nil, Internal("failed to load feed", err)
	}
	authors := make([]string, 0, len(following)+1)
	authors = append(authors, viewerID)
	for _, f := range following {
		authors = append(authors, f.FollowingID)
	}

	posts, total, err := s.store.ListFeed(ctx, authors, size, (page-1)*size)
	if err != nil {
		return nil, Internal("failed to load feed", err)
	}
	views, err := buildPostViews(ctx, s.store, viewerID, posts, false)
	if err != nil {
		return nil, err
	}
	return &Page[PostView]{Items: views, Total: total, Page: page, Size: size}, nil
}

// ToggleLike sets whether the viewer likes the post. Both directions are
// idempotent. The post id is echoed back.
func (s *PostService) ToggleLike(ctx context.Context, viewerID, postID string, liked bool) (string, error) {
	post, err := s.gate.AuthorizeRead(ctx, viewerID, postID)
	if err != nil {
		return "", err
	}

	if !liked {
		if err := s.store.DeleteLike(ctx, viewerID, postID); err != nil {
			return "", storeErr(err, "failed to unlike post")
		}
		return postID, nil
	}

	like := &models.Like{UserID: viewerID, PostID: postID}
	if err := s.store.PutLike(ctx, like); err != nil {
		return "", storeErr(err, "post not found")
	}
	publish(s.events, events.PostLiked, events.PostLikedEvent{
		PostID:   postID,
		AuthorID: post.AuthorID,
		UserID:   viewerID,
		At:       like.CreatedAt,
	})
	return postID, nil
}

// Likes lists who liked the post, newest first.
func (s *PostService) Likes(ctx context.Context, viewerID, postID string) ([]LikeView, error) {
	if _, err := s.gate.AuthorizeRead(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	likes, err := s.store.ListLikes(ctx, postID)
	if err != nil {
		return nil, Internal("failed to list likes", err)
	}
	out := make([]LikeView, 0, len(likes))
	for _, l := range likes {
		out = append(out, LikeView{User: cardOf(l.User), LikedAt: l.CreatedAt})
	}
	return out, nil
}

// buildPostViews decorates posts for viewerID. Posts must carry Author.
func buildPostViews(ctx context.Context, st store.Store, viewerID string, posts []models.Post, withComments bool) ([]PostView, error) {
	liked, err := st.ListLikedPosts(ctx, viewerID)
	if err != nil {
		return nil, Internal("failed to load likes", err)
	}
	likedIDs := make(map[string]bool, len(liked))
	for _, l := range liked {
		likedIDs[l.PostID] = true
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		view := PostView{Post: p, Author: cardOf(p.Author), LikedByViewer: likedIDs[p.ID]}
		if withComments {
			comments, err := st.ListComments(ctx, p.ID)
			if err != nil {
				return nil, Internal("failed to load comments", err)
			}
			view.Comments = make([]CommentView, 0, len(comments))
			for _, c := range comments {
				view.Comments = append(view.Comments, commentViewOf(c))
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// verifyUpload checks that key was issued to userID and the object exists.
func verifyUpload(ctx context.Context, images imagehost.Host, key string, kind imagehost.Kind, userID string) error {
	if !imagehost.OwnedBy(key, kind, userID) {
		return Forbidden("image does not belong to you")
	}
	exists, err := images.Exists(ctx, key)
	if err != nil {
		return Internal("failed to verify image", err)
	}
	if !exists {
		return BadRequest("image has not been uploaded")
	}
	return nil
}

func requireOnboarded(ctx context.Context, st store.Users, userID string) error {
	user, err := st.GetUser(ctx, userID)
	if err != nil {
		return storeErr(err, "user not found")
	}
	if !user.Onboarded {
		return Forbidden("complete onboarding first")
	}
	return nil
}

// extractHashtags returns the distinct #words of text, lowercased, without
// trailing punctuation.
func extractHashtags(text string) []string {
	seen := map[string]bool{}
	hashtags := []string{}
	for _, word := range strings.Fields(text) {
		if !strings.HasPrefix(word, "#") {
			continue
		}
		tag := strings.TrimRightFunc(strings.TrimPrefix(word, "#"), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
		})
		tag = strings.ToLower(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		hashtags = append(hashtags, tag)
	}
	return hashtags
}
