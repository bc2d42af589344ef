package controllers

import (
	"net/http"

	"github.com/benjibook/api-go/services"
	"github.com/gin-gonic/gin"
)

type PostController struct {
	Posts *services.PostService
}

type CreatePostRequest struct {
	Text     string `json:"text" binding:"max=2200"`
	ImageKey string `json:"imageKey"`
}

type UpdatePostRequest struct {
	Text string `json:"text" binding:"max=2200"`
}

func NewPostController(posts *services.PostService) *PostController {
	return &PostController{Posts: posts}
}

// CreatePost godoc
// @Summary Create a new post
// @Description Creates a post from text and an uploaded image key
// @Tags posts
// @Accept json
// @Produce json
// @Param post body CreatePostRequest true "Post creation request"
// @Success 201 {object} services.PostView
// @Router /posts [post]
func (pc *PostController) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	post, err := pc.Posts.Create(c.Request.Context(), viewerID(c), services.CreatePostInput{
		Text:     req.Text,
		ImageKey: req.ImageKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: post, Message: "Post created successfully"})
}

func (pc *PostController) GetPostDetail(c *gin.Context) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	post, err := pc.Posts.Get(c.Request.Context(), viewerID(c), uri.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: post})
}

func (pc *PostController) UpdatePost(c *gin.Context) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	post, err := pc.Posts.UpdateText(c.Request.Context(), viewerID(c), uri.ID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: post, Message: "Post updated successfully"})
}

// DeletePost godoc
// @Summary Delete a post
// @Description Deletes the caller's post with its likes, comments and image
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} services.DeleteResult
// @Router /posts/{id} [delete]
func (pc *PostController) DeletePost(c *gin.Context) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	result, err := pc.Posts.Delete(c.Request.Context(), viewerID(c), uri.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: result, Message: "Post deleted successfully"})
}
