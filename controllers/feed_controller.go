package controllers

import (
	"net/http"

	"github.com/benjibook/api-go/services"
	"github.com/gin-gonic/gin"
)

type FeedController struct {
	Posts *services.PostService
}

func NewFeedController(posts *services.PostService) *FeedController {
	return &FeedController{Posts: posts}
}

// GetUserFeed godoc
// @Summary Get the caller's feed
// @Description Posts by the caller and accepted followings, newest first
// @Tags feed
// @Produce json
// @Param page query integer false "Page number (default: 1)"
// @Param pageSize query integer false "Items per page (default: 20)"
// @Success 200 {object} StandardResponse
// @Router /feed [get]
func (fc *FeedController) GetUserFeed(c *gin.Context) {
	var query pageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	page, err := fc.Posts.Feed(c.Request.Context(), viewerID(c), query.Page, query.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       page.Items,
		Pagination: paginationOf(page),
	})
}
