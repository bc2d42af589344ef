package controllers

import (
	"errors"
	"net/http"

	"github.com/benjibook/api-go/services"
	"github.com/benjibook/api-go/utils"
	"github.com/benjibook/api-go/utils/log"
	"github.com/gin-gonic/gin"
)

type StandardResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Meta       interface{}     `json:"meta,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

func paginationOf[T any](page *services.Page[T]) *PaginationMeta {
	totalPages := int((page.Total + int64(page.Size) - 1) / int64(page.Size))
	return &PaginationMeta{
		CurrentPage: page.Page,
		PageSize:    page.Size,
		TotalItems:  page.Total,
		TotalPages:  totalPages,
	}
}

type pageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

type userURI struct {
	UserID string `uri:"userId" binding:"required,uuid"`
}

type idURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type edgeURI struct {
	FollowerID  string `uri:"followerId" binding:"required,uuid"`
	FollowingID string `uri:"followingId" binding:"required,uuid"`
}

var statusByKind = map[services.Kind]int{
	services.KindNotFound:     http.StatusNotFound,
	services.KindForbidden:    http.StatusForbidden,
	services.KindBadRequest:   http.StatusBadRequest,
	services.KindUnauthorized: http.StatusUnauthorized,
}

// respondError writes err as a JSON error. Internal errors are logged and
// their details are not sent to the client.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		if status, ok := statusByKind[svcErr.Kind]; ok {
			c.JSON(status, gin.H{"success": false, "error": svcErr.Message})
			return
		}
	}

	_ = c.Error(err)
	log.Log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

// viewerID is the authenticated user. Only used behind AuthMiddleware.
func viewerID(c *gin.Context) string {
	if claims := utils.GetUser(c); claims != nil {
		return claims.UserID
	}
	return ""
}
