package services

import (
	"context"
	"errors"
	"time"

	"github.com/benjibook/api-go/events"
	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/store"
)

type followEvent int

const (
	followRequest followEvent = iota
	followAccept
	followDeny
)

// noEdge stands for the absence of an edge between an ordered pair.
const noEdge models.FollowStatus = ""

// followTransitions lists every legal move of an edge. A request from any
// state, including a terminal one, resets the edge to pending. Accept and
// deny need an existing edge. Removal is a delete and is not listed.
var followTransitions = map[models.FollowStatus]map[followEvent]models.FollowStatus{
	noEdge: {
		followRequest: models.FollowPending,
	},
	models.FollowPending: {
		followRequest: models.FollowPending,
		followAccept:  models.FollowAccepted,
		followDeny:    models.FollowDenied,
	},
	models.FollowAccepted: {
		followRequest: models.FollowPending,
		followAccept:  models.FollowAccepted,
		followDeny:    models.FollowDenied,
	},
	models.FollowDenied: {
		followRequest: models.FollowPending,
		followAccept:  models.FollowAccepted,
		followDeny:    models.FollowDenied,
	},
}

func transition(current models.FollowStatus, ev followEvent) (models.FollowStatus, bool) {
	next, ok := followTransitions[current][ev]
	return next, ok
}

type FollowService struct {
	store  store.Store
	events events.Publisher
}

func NewFollowService(st store.Store, pub events.Publisher) *FollowService {
	return &FollowService{store: st, events: pub}
}

// SendRequest puts the viewer's edge to followingID into pending.
func (s *FollowService) SendRequest(ctx context.Context, viewerID, followingID string) (*models.Follow, error) {
	if viewerID == followingID {
		return nil, BadRequest("cannot follow yourself")
	}
	if _, err := findVisibleUser(ctx, s.store, followingID); err != nil {
		return nil, err
	}

	var edge *models.Follow
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		edge, err = applyFollowEvent(ctx, tx, viewerID, followingID, followRequest)
		return err
	})
	if err != nil {
		return nil, storeErr(err, "failed to send follow request")
	}

	publish(s.events, events.FollowRequested, events.FollowEvent{
		FollowerID:  viewerID,
		FollowingID: followingID,
		Status:      string(edge.Status),
		ActorID:     viewerID,
		At:          edge.UpdatedAt,
	})
	return edge, nil
}

// ChangeStatus accepts or denies the edge followerID -> followingID. Only the
// followed party may decide.
func (s *FollowService) ChangeStatus(ctx context.Context, viewerID, followerID, followingID string, status models.FollowStatus) (*models.Follow, error) {
	var ev followEvent
	switch status {
	case models.FollowAccepted:
		ev = followAccept
	case models.FollowDenied:
		ev = followDeny
	default:
		return nil, BadRequest("status must be accepted or denied")
	}
	if viewerID != followingID {
		return nil, Forbidden("only the requested user can change a follow status")
	}

	var edge *models.Follow
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		edge, err = applyFollowEvent(ctx, tx, followerID, followingID, ev)
		return err
	})
	if err != nil {
		return nil, storeErr(err, "follow request not found")
	}

	publish(s.events, events.FollowStatusChanged, events.FollowEvent{
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      string(edge.Status),
		ActorID:     viewerID,
		At:          edge.UpdatedAt,
	})
	return edge, nil
}

// DeleteEdge removes the edge. The follower unfollows, the followed user
// removes a follower.
func (s *FollowService) DeleteEdge(ctx context.Context, viewerID, followerID, followingID string) error {
	if viewerID != followerID && viewerID != followingID {
		return Forbidden("only either side of a follow can remove it")
	}
	if err := s.store.DeleteFollow(ctx, followerID, followingID); err != nil {
		return storeErr(err, "follow not found")
	}

	publish(s.events, events.FollowRemoved, events.FollowEvent{
		FollowerID:  followerID,
		FollowingID: followingID,
		ActorID:     viewerID,
		At:          time.Now(),
	})
	return nil
}

func applyFollowEvent(ctx context.Context, tx store.Store, followerID, followingID string, ev followEvent) (*models.Follow, error) {
	current := noEdge
	existing, err := tx.GetFollow(ctx, followerID, followingID)
	switch {
	case err == nil:
		current = existing.Status
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	next, ok := transition(current, ev)
	if !ok {
		if current == noEdge {
			return nil, store.ErrNotFound
		}
		return nil, BadRequest("illegal follow transition")
	}

	edge := &models.Follow{FollowerID: followerID, FollowingID: followingID, Status: next}
	if err := tx.PutFollow(ctx, edge); err != nil {
		return nil, err
	}
	return edge, nil
}

// Followers lists users with an accepted edge to userID.
func (s *FollowService) Followers(ctx context.Context, viewerID, userID string) ([]Relationship, error) {
	if err := s.authorizeGraph(ctx, viewerID, userID); err != nil {
		return nil, err
	}
	edges, err := s.store.ListFollowers(ctx, userID, models.FollowAccepted)
	if err != nil {
		return nil, Internal("failed to list followers", err)
	}
	out := make([]Relationship, 0, len(edges))
	for _, e := range edges {
		out = append(out, Relationship{User: cardOf(e.Follower), Status: e.Status, UpdatedAt: e.UpdatedAt})
	}
	return out, nil
}

// Following lists users userID has an accepted edge to.
func (s *FollowService) Following(ctx context.Context, viewerID, userID string) ([]Relationship, error) {
	if err := s.authorizeGraph(ctx, viewerID, userID); err != nil {
		return nil, err
	}
	edges, err := s.store.ListFollowing(ctx, userID, models.FollowAccepted)
	if err != nil {
		return nil, Internal("failed to list following", err)
	}
	out := make([]Relationship, 0, len(edges))
	for _, e := range edges {
		out = append(out, Relationship{User: cardOf(e.Following), Status: e.Status, UpdatedAt: e.UpdatedAt})
	}
	return out, nil
}

// authorizeGraph lets the owner and accepted followers read a follow graph.
func (s *FollowService) authorizeGraph(ctx context.Context, viewerID, userID string) error {
	if viewerID == userID {
		return nil
	}
	if _, err := findVisibleUser(ctx, s.store, userID); err != nil {
		return err
	}
	ok, err := hasAccess(ctx, s.store, viewerID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return Forbidden("follow this user to see their connections")
	}
	return nil
}

// PendingRequests lists the outgoing requests of userID still awaiting a
// decision. Only userID may see them.
func (s *FollowService) PendingRequests(ctx context.Context, viewerID, userID string) ([]Relationship, error) {
	if viewerID != userID {
		return nil, Forbidden("cannot view another user's pending requests")
	}
	edges, err := s.store.ListFollowing(ctx, userID, models.FollowPending)
	if err != nil {
		return nil, Internal("failed to list pending requests", err)
	}
	out := make([]Relationship, 0, len(edges))
	for _, e := range edges {
		out = append(out, Relationship{User: cardOf(e.Following), Status: e.Status, UpdatedAt: e.UpdatedAt})
	}
	return out, nil
}

// ReceivedRequests lists pending and accepted incoming edges of the viewer.
// FollowedBack is set when the viewer's own edge to that follower is accepted.
func (s *FollowService) ReceivedRequests(ctx context.Context, viewerID string) ([]Relationship, error) {
	incoming, err := s.store.ListFollowers(ctx, viewerID, models.FollowPending, models.FollowAccepted)
	if err != nil {
		return nil, Internal("failed to list follow requests", err)
	}
	outgoing, err := s.store.ListFollowing(ctx, viewerID, models.FollowAccepted)
	if err != nil {
		return nil, Internal("failed to list follow requests", err)
	}
	back := make(map[string]bool, len(outgoing))
	for _, e := range outgoing {
		back[e.FollowingID] = true
	}

	out := make([]Relationship, 0, len(incoming))
	for _, e := range incoming {
		out = append(out, Relationship{
			User:         cardOf(e.Follower),
			Status:       e.Status,
			UpdatedAt:    e.UpdatedAt,
			FollowedBack: back[e.FollowerID],
		})
	}
	return out, nil
}
