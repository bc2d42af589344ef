package routes

import (
	"github.com/benjibook/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(protected *gin.RouterGroup, userController *controllers.UserController) {
	users := protected.Group("/users")
	{
		users.GET("/search", userController.SearchUsers)
		users.GET("/:userId/profile", userController.GetUserProfile)
	}
}
