package routes

import (
	"github.com/benjibook/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupFeedRoutes(protected *gin.RouterGroup, feedController *controllers.FeedController) {
	protected.GET("/feed", feedController.GetUserFeed)
}
