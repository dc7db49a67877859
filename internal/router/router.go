package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/api"
	"github.com/pageza/recipehub/backend/internal/blob"
	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/service"
)

// Deps is everything the HTTP surface is built from.
type Deps struct {
	DB            *gorm.DB
	Log           zerolog.Logger
	CORSOrigins   []string
	Blobs         blob.Store
	Auth          service.IAuthService
	Users         service.IUserService
	Recipes       *service.RecipeService
	Comments      *service.CommentService
	Notifications *service.NotificationService
}

// SetupRouter configures the application routes
func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(deps.CORSOrigins))
	router.NoRoute(middleware.NotFound())

	public := router.Group("")
	api.NewHealthHandler(deps.DB).RegisterRoutes(public)
	api.NewImageHandler(deps.Blobs).RegisterRoutes(public)

	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))

	api.NewAuthHandler(deps.Auth).RegisterRoutes(public, protected)
	api.NewUserHandler(deps.Users).RegisterRoutes(protected)
	api.NewRecipeHandler(deps.Recipes, deps.Recipes.Engine()).RegisterRoutes(protected)
	api.RegisterCommentRoutes(protected, deps.Comments.Engine())
	api.NewNotificationHandler(deps.Notifications, deps.Notifications.Engine()).RegisterRoutes(protected)

	return router
}
