package routes

import (
	"github.com/benjibook/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupUploadRoutes(r *gin.RouterGroup, uploadController *controllers.UploadController) {
	uploads := r.Group("/uploads")
	{
		uploads.POST("/presigned-url", uploadController.GetPresignedURL)
	}
}
