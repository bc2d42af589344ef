// Package services holds the relationship and content rules of Benjibook.
// Every operation takes the acting user's id explicitly as viewerID.
package services

import (
	"time"

	"github.com/benjibook/api-go/events"
	"github.com/benjibook/api-go/imagehost"
	"github.com/benjibook/api-go/store"
)

type Services struct {
	Auth     *AuthService
	Follows  *FollowService
	Profiles *ProfileService
	Gate     *ContentGate
	Posts    *PostService
	Comments *CommentService
	Users    *UserService
	Images   imagehost.Host
}

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
}

func New(st store.Store, images imagehost.Host, pub events.Publisher, opts Options) *Services {
	gate := NewContentGate(st)
	return &Services{
		Auth:     NewAuthService(st, opts.JWTSecret, opts.TokenTTL),
		Follows:  NewFollowService(st, pub),
		Profiles: NewProfileService(st),
		Gate:     gate,
		Posts:    NewPostService(st, gate, images, pub),
		Comments: NewCommentService(st, gate, pub),
		Users:    NewUserService(st, images, pub),
		Images:   images,
	}
}
