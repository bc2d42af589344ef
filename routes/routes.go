package routes

import (
	"time"

	"github.com/benjibook/api-go/config"
	"github.com/benjibook/api-go/controllers"
	"github.com/benjibook/api-go/middleware"
	"github.com/benjibook/api-go/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Services       *services.Services
	Google         *config.GoogleConfig
	JWTSecret      string
	AllowedOrigins []string
}

// NewRouter builds the engine with recovery, request logging and CORS.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(deps.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = deps.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	SetupRoutes(r, deps)
	return r
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	svc := deps.Services

	// Initialize controllers
	authController := controllers.NewAuthController(svc.Auth, deps.Google)
	userController := controllers.NewUserController(svc.Profiles, svc.Users)
	postController := controllers.NewPostController(svc.Posts)
	commentController := controllers.NewCommentController(svc.Comments)
	interactionController := controllers.NewInteractionController(svc.Follows, svc.Posts)
	feedController := controllers.NewFeedController(svc.Posts)
	uploadController := controllers.NewUploadController(svc.Images)

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
		public.POST("/auth/google", authController.GoogleLogin)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.JWTSecret))
	{
		protected.GET("/me", userController.GetMe)
		protected.POST("/onboarding", userController.CompleteOnboarding)
		protected.PUT("/profile", userController.UpdateProfile)
		protected.DELETE("/profile", userController.DeleteAccount)

		SetupUserRoutes(protected, userController)
		SetupInteractionRoutes(protected, interactionController)
		SetupPostRoutes(protected, postController, commentController)
		SetupFeedRoutes(protected, feedController)
		SetupUploadRoutes(protected, uploadController)
	}
}
