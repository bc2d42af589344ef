package controllers

import (
	"net/http"

	"github.com/benjibook/api-go/imagehost"
	"github.com/gin-gonic/gin"
)

type UploadController struct {
	Images imagehost.Host
}

type PresignedURLRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required"`
	Kind        string `json:"kind" binding:"required,oneof=post profile"`
}

func NewUploadController(images imagehost.Host) *UploadController {
	return &UploadController{Images: images}
}

// GetPresignedURL issues an upload URL for a key owned by the caller. The
// returned key is later passed to post creation or a profile update.
func (uc *UploadController) GetPresignedURL(c *gin.Context) {
	var req PresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	kind := imagehost.Kind(req.Kind)
	if !imagehost.ValidContentType(req.ContentType) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid file type"})
		return
	}
	if !imagehost.ValidSize(kind, req.FileSize) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "File size exceeds limit"})
		return
	}

	key := imagehost.NewKey(kind, viewerID(c), req.FileName)
	upload, err := uc.Images.PresignUpload(c.Request.Context(), key, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    upload,
		Message: "Presigned URL generated successfully",
	})
}
