package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/benjibook/api-go/events"
	"github.com/benjibook/api-go/imagehost"
	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/store"
)

const (
	maxNameLength = 50
	maxBioLength  = 160
)

// ProfileInput carries profile fields to change. Nil fields are left as they
// are. An empty ImageKey removes the profile image.
type ProfileInput struct {
	Name     *string
	Username *string
	Bio      *string
	Birthday *time.Time
	Gender   *string
	ImageKey *string
}

type UserService struct {
	store   store.Store
	images  imagehost.Host
	cleaner imageCleaner
}

func NewUserService(st store.Store, images imagehost.Host, pub events.Publisher) *UserService {
	return &UserService{store: st, images: images, cleaner: imageCleaner{images: images, events: pub}}
}

// CompleteOnboarding sets the first profile of a new account and makes it
// visible to other users. Name and username are required.
func (s *UserService) CompleteOnboarding(ctx context.Context, viewerID string, in ProfileInput) (*models.User, []string, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, nil, BadRequest("name is required")
	}
	if in.Username == nil {
		return nil, nil, BadRequest("username is required")
	}
	return s.update(ctx, viewerID, in, true)
}

// UpdateProfile changes the viewer's profile. A replaced profile image is
// deleted from the image host afterwards; keys that could not be deleted are
// returned.
func (s *UserService) UpdateProfile(ctx context.Context, viewerID string, in ProfileInput) (*models.User, []string, error) {
	return s.update(ctx, viewerID, in, false)
}

func (s *UserService) update(ctx context.Context, viewerID string, in ProfileInput, onboard bool) (*models.User, []string, error) {
	user, err := s.store.GetUser(ctx, viewerID)
	if err != nil {
		return nil, nil, storeErr(err, "user not found")
	}
	if onboard && user.Onboarded {
		return nil, nil, BadRequest("onboarding already completed")
	}

	oldImageKey := user.ImageKey
	if err := s.apply(ctx, user, in); err != nil {
		return nil, nil, err
	}
	if onboard {
		user.Onboarded = true
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, nil, BadRequest("username already taken")
		}
		return nil, nil, storeErr(err, "failed to update profile")
	}

	var orphaned []string
	if oldImageKey != "" && oldImageKey != user.ImageKey {
		orphaned = s.cleaner.cleanup(ctx, "profile image replaced", oldImageKey)
	}
	return user, orphaned, nil
}

func (s *UserService) apply(ctx context.Context, user *models.User, in ProfileInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len([]rune(name)) > maxNameLength {
			return BadRequest("name must be between 1 and 50 characters")
		}
		user.Name = name
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := ValidateUsername(username); err != nil {
			return err
		}
		user.Username = &username
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if len([]rune(bio)) > maxBioLength {
			return BadRequest("bio must be at most 160 characters")
		}
		user.Bio = bio
	}
	if in.Birthday != nil {
		if in.Birthday.After(time.Now()) {
			return BadRequest("birthday cannot be in the future")
		}
		user.Birthday = in.Birthday
	}
	if in.Gender != nil {
		if err := validateGender(*in.Gender); err != nil {
			return err
		}
		user.Gender = *in.Gender
	}
	if in.ImageKey != nil {
		key := *in.ImageKey
		switch {
		case key == "":
			user.ImageKey, user.Image = "", ""
		case key != user.ImageKey:
			if err := verifyUpload(ctx, s.images, key, imagehost.KindProfile, user.ID); err != nil {
				return err
			}
			user.ImageKey, user.Image = key, s.images.PublicURL(key)
		}
	}
	return nil
}

// DeleteAccount removes the viewer with all owned content and follow edges,
// then deletes the profile image and every post image from the image host.
func (s *UserService) DeleteAccount(ctx context.Context, viewerID string) (*DeleteResult, error) {
	var keys []string
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		user, err := tx.GetUser(ctx, viewerID)
		if err != nil {
			return err
		}
		posts, err := tx.ListPostsByAuthor(ctx, viewerID)
		if err != nil {
			return err
		}
		keys = append(keys, user.ImageKey)
		for _, p := range posts {
			keys = append(keys, p.ImageKey)
		}
		return tx.DeleteUser(ctx, viewerID)
	})
	if err != nil {
		return nil, storeErr(err, "user not found")
	}

	return &DeleteResult{OrphanedImages: s.cleaner.cleanup(ctx, "account deleted", keys...)}, nil
}

// Search finds onboarded users by name or username.
func (s *UserService) Search(ctx context.Context, query string, page, size int) (*Page[UserCard], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, BadRequest("search query is required")
	}
	page, size, err := normalizePage(page, size)
	if err != nil {
		return nil, err
	}

	users, total, err := s.store.SearchUsers(ctx, query, size, (page-1)*size)
	if err != nil {
		return nil, Internal("failed to search users", err)
	}
	cards := make([]UserCard, 0, len(users))
	for _, u := range users {
		cards = append(cards, cardOf(u))
	}
	return &Page[UserCard]{Items: cards, Total: total, Page: page, Size: size}, nil
}
