package services

import (
	"context"
	"errors"
	"time"

	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/store"
	"github.com/jinzhu/copier"
)

type ProfileStatus string

const (
	StatusSelf     ProfileStatus = "SELF"
	StatusAccepted ProfileStatus = "ACCEPTED"
	StatusPending  ProfileStatus = "PENDING"
	StatusDenied   ProfileStatus = "DENIED"
)

var edgeStatusTags = map[models.FollowStatus]ProfileStatus{
	models.FollowAccepted: StatusAccepted,
	models.FollowPending:  StatusPending,
	models.FollowDenied:   StatusDenied,
}

// ProfileSummary is what any signed-in user may see of an onboarded user.
// Counts include accepted edges only.
type ProfileSummary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Image          string  `json:"image"`
	Bio            string  `json:"bio"`
	Username       *string `json:"username"`
	FollowersCount int64   `json:"followersCount"`
	FollowingCount int64   `json:"followingCount"`
}

// ProfileDetails is added for the user themself and accepted followers.
type ProfileDetails struct {
	Birthday   *time.Time `json:"birthday"`
	Gender     string     `json:"gender"`
	CreatedAt  time.Time  `json:"createdAt"`
	PostsCount int        `json:"postsCount"`
	Posts      []PostView `json:"posts"`
}

type Profile struct {
	ProfileSummary
	*ProfileDetails

	// Status is nil when the viewer has no edge to the user.
	Status          *ProfileStatus `json:"status"`
	StatusUpdatedAt *time.Time     `json:"statusUpdatedAt,omitempty"`
	// FollowedByCurrent is true when the user's edge to the viewer is accepted.
	FollowedByCurrent bool `json:"followedByCurrent"`

	// Set on the viewer's own profile only.
	Email               string     `json:"email,omitempty"`
	Onboarded           *bool      `json:"onboarded,omitempty"`
	Likes               []PostView `json:"likes,omitempty"`
	PendingRequestCount *int64     `json:"pendingRequestCount,omitempty"`
}

type ProfileService struct {
	store store.Store
}

func NewProfileService(st store.Store) *ProfileService {
	return &ProfileService{store: st}
}

// ResolveProfile returns the projection of targetID that viewerID may see.
func (s *ProfileService) ResolveProfile(ctx context.Context, viewerID, targetID string) (*Profile, error) {
	if viewerID == targetID {
		return s.selfProfile(ctx, viewerID)
	}

	target, err := findVisibleUser(ctx, s.store, targetID)
	if err != nil {
		return nil, err
	}
	profile, err := s.summary(ctx, target)
	if err != nil {
		return nil, err
	}

	edge, err := s.store.GetFollow(ctx, viewerID, targetID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, Internal("failed to load relationship", err)
	}
	profile.FollowedByCurrent, err = hasAcceptedEdge(ctx, s.store, targetID, viewerID)
	if err != nil {
		return nil, err
	}
	if edge == nil {
		return profile, nil
	}

	status := edgeStatusTags[edge.Status]
	profile.Status = &status
	if edge.Status != models.FollowAccepted {
		updatedAt := edge.UpdatedAt
		profile.StatusUpdatedAt = &updatedAt
		return profile, nil
	}

	profile.ProfileDetails, err = s.details(ctx, viewerID, target)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) selfProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	profile, err := s.summary(ctx, user)
	if err != nil {
		return nil, err
	}
	status := StatusSelf
	profile.Status = &status
	profile.Email = user.Email
	profile.Onboarded = &user.Onboarded

	if profile.ProfileDetails, err = s.details(ctx, userID, user); err != nil {
		return nil, err
	}

	liked, err := s.store.ListLikedPosts(ctx, userID)
	if err != nil {
		return nil, Internal("failed to load liked posts", err)
	}
	posts := make([]models.Post, 0, len(liked))
	for _, l := range liked {
		// Liked posts stay private to the liker, but only those still
		// visible to them are listed.
		ok, err := hasAccess(ctx, s.store, userID, l.Post.AuthorID)
		if err != nil {
			return nil, err
		}
		if ok {
			posts = append(posts, l.Post)
		}
	}
	if profile.Likes, err = buildPostViews(ctx, s.store, userID, posts, false); err != nil {
		return nil, err
	}

	pending, err := s.store.CountFollowers(ctx, userID, models.FollowPending)
	if err != nil {
		return nil, Internal("failed to count follow requests", err)
	}
	profile.PendingRequestCount = &pending
	return profile, nil
}

func (s *ProfileService) summary(ctx context.Context, user *models.User) (*Profile, error) {
	profile := &Profile{}
	if err := copier.Copy(&profile.ProfileSummary, user); err != nil {
		return nil, Internal("failed to build profile", err)
	}

	var err error
	if profile.FollowersCount, err = s.store.CountFollowers(ctx, user.ID, models.FollowAccepted); err != nil {
		return nil, Internal("failed to count followers", err)
	}
	if profile.FollowingCount, err = s.store.CountFollowing(ctx, user.ID, models.FollowAccepted); err != nil {
		return nil, Internal("failed to count following", err)
	}
	return profile, nil
}

func (s *ProfileService) details(ctx context.Context, viewerID string, user *models.User) (*ProfileDetails, error) {
	details := &ProfileDetails{}
	if err := copier.Copy(details, user); err != nil {
		return nil, Internal("failed to build profile", err)
	}

	posts, err := s.store.ListPostsByAuthor(ctx, user.ID)
	if err != nil {
		return nil, Internal("failed to load posts", err)
	}
	if details.Posts, err = buildPostViews(ctx, s.store, viewerID, posts, true); err != nil {
		return nil, err
	}
	details.PostsCount = len(details.Posts)
	return details, nil
}

func hasAcceptedEdge(ctx context.Context, st store.Follows, followerID, followingID string) (bool, error) {
	edge, err := st.GetFollow(ctx, followerID, followingID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, Internal("failed to load relationship", err)
	}
	return edge.Status == models.FollowAccepted, nil
}
