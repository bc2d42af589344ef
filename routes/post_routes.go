package routes

import (
	"github.com/benjibook/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupPostRoutes(protected *gin.RouterGroup, postController *controllers.PostController, commentController *controllers.CommentController) {
	posts := protected.Group("/posts")
	{
		posts.POST("", postController.CreatePost)
		posts.GET("/:id", postController.GetPostDetail)
		posts.PATCH("/:id", postController.UpdatePost)
		posts.DELETE("/:id", postController.DeletePost)

		posts.GET("/:id/comments", commentController.GetPostComments)
		posts.POST("/:id/comments", commentController.LeaveComment)
	}

	comments := protected.Group("/comments")
	{
		comments.PATCH("/:id", commentController.UpdateComment)
		comments.DELETE("/:id", commentController.DeleteComment)
	}
}
