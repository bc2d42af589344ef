package controllers

import (
	"context"
	"net/http"

	"github.com/benjibook/api-go/models"
	"github.com/benjibook/api-go/services"
	"github.com/gin-gonic/gin"
)

// InteractionController serves follow edges and likes.
type InteractionController struct {
	Follows *services.FollowService
	Posts   *services.PostService
}

func NewInteractionController(follows *services.FollowService, posts *services.PostService) *InteractionController {
	return &InteractionController{Follows: follows, Posts: posts}
}

// FollowUser godoc
// @Summary Send a follow request
// @Description Creates or resets the caller's edge to the user as pending
// @Tags interactions
// @Produce json
// @Param userId path string true "User ID to follow"
// @Success 200 {object} models.Follow
// @Router /users/{userId}/follow [post]
func (ic *InteractionController) FollowUser(c *gin.Context) {
	var uri userURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	edge, err := ic.Follows.SendRequest(c.Request.Context(), viewerID(c), uri.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: edge, Message: "Follow request sent"})
}

// ChangeFollowStatus godoc
// @Summary Accept or deny a follow request
// @Tags interactions
// @Accept json
// @Produce json
// @Param followerId path string true "Follower ID"
// @Param followingId path string true "Followed user ID, must be the caller"
// @Success 200 {object} models.Follow
// @Router /follows/{followerId}/{followingId}/status [put]
func (ic *InteractionController) ChangeFollowStatus(c *gin.Context) {
	var uri edgeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}
	var req struct {
		Status models.FollowStatus `json:"status" binding:"required,oneof=accepted denied"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	edge, err := ic.Follows.ChangeStatus(c.Request.Context(), viewerID(c), uri.FollowerID, uri.FollowingID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: edge})
}

// DeleteFollow covers unfollow and remove-follower.
func (ic *InteractionController) DeleteFollow(c *gin.Context) {
	var uri edgeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	if err := ic.Follows.DeleteEdge(c.Request.Context(), viewerID(c), uri.FollowerID, uri.FollowingID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Follow removed"})
}

func (ic *InteractionController) GetUserFollowers(c *gin.Context) {
	ic.listRelationships(c, ic.Follows.Followers)
}

func (ic *InteractionController) GetUserFollowing(c *gin.Context) {
	ic.listRelationships(c, ic.Follows.Following)
}

// GetPendingRequests lists the caller's outgoing requests awaiting a decision.
func (ic *InteractionController) GetPendingRequests(c *gin.Context) {
	ic.listRelationships(c, ic.Follows.PendingRequests)
}

// GetFollowRequests lists pending and accepted incoming edges of the caller.
func (ic *InteractionController) GetFollowRequests(c *gin.Context) {
	requests, err := ic.Follows.ReceivedRequests(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: requests})
}

type relationshipLister func(ctx context.Context, viewerID, userID string) ([]services.Relationship, error)

func (ic *InteractionController) listRelationships(c *gin.Context, list relationshipLister) {
	var uri userURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	relationships, err := list(c.Request.Context(), viewerID(c), uri.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: relationships})
}

// LikePost godoc
// @Summary Like or unlike a post
// @Description Sets the caller's like on a post to the requested value
// @Tags interactions
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Router /posts/{id}/like [post]
func (ic *InteractionController) LikePost(c *gin.Context) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}
	var req struct {
		Liked *bool `json:"liked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	postID, err := ic.Posts.ToggleLike(c.Request.Context(), viewerID(c), uri.ID, *req.Liked)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: gin.H{"postId": postID, "liked": *req.Liked}})
}

func (ic *InteractionController) GetPostLikes(c *gin.Context) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	likes, err := ic.Posts.Likes(c.Request.Context(), viewerID(c), uri.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: likes})
}
