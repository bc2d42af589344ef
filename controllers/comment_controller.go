package controllers

import (
	"net/http"

	"github.com/benjibook/api-go/services"
	"github.com/gin-gonic/gin"
)

type CommentController struct {
	Comments *services.CommentService
}

func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{Comments: comments}
}

type commentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

func (cc *CommentController) GetPostComments(c *gin.Context) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	comments, err := cc.Comments.List(c.Request.Context(), viewerID(c), uri.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: comments})
}

func (cc *CommentController) LeaveComment(c *gin.Context) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id, err := cc.Comments.Leave(c.Request.Context(), viewerID(c), uri.ID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: gin.H{"id": id}})
}

func (cc *CommentController) UpdateComment(c *gin.Context) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := cc.Comments.UpdateText(c.Request.Context(), viewerID(c), uri.ID, req.Text); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Comment updated"})
}

func (cc *CommentController) DeleteComment(c *gin.Context) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	if err := cc.Comments.Delete(c.Request.Context(), viewerID(c), uri.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Comment deleted"})
}
