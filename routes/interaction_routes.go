package routes

import (
	"github.com/benjibook/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupInteractionRoutes(protected *gin.RouterGroup, interactionController *controllers.InteractionController) {
	// Post interactions
	posts := protected.Group("/posts")
	{
		posts.POST("/:id/like", interactionController.LikePost)
		posts.GET("/:id/likes", interactionController.GetPostLikes)
	}

	// User interactions
	users := protected.Group("/users")
	{
		users.POST("/:userId/follow", interactionController.FollowUser)
		users.GET("/:userId/followers", interactionController.GetUserFollowers)
		users.GET("/:userId/following", interactionController.GetUserFollowing)
		users.GET("/:userId/pending-requests", interactionController.GetPendingRequests)
	}

	// Follow edges, addressed by both ends
	follows := protected.Group("/follows")
	{
		follows.PUT("/:followerId/:followingId/status", interactionController.ChangeFollowStatus)
		follows.DELETE("/:followerId/:followingId", interactionController.DeleteFollow)
	}

	protected.GET("/follow-requests", interactionController.GetFollowRequests)
}
