package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/respond"
	"github.com/pageza/recipehub/backend/internal/service"
)

// UserHandler serves user lookups, favorites and profile pictures.
type UserHandler struct {
	userService service.IUserService
}

func NewUserHandler(userService service.IUserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/top-users", h.TopUsers)

	users := protected.Group("/users")
	{
		users.GET("/me", h.Me)
		users.GET("/me/favorites", h.FavoriteIDs)
		users.GET("/id/:user_id", h.ByID)
		users.GET("/username/:username", h.ByUsername)
		users.GET("/:user_id/recipes", h.Recipes)
		users.GET("/favorites", h.Favorites)
		users.POST("/favorites/:recipe_id", h.ToggleFavorite)
		users.POST("/profile_picture", h.UploadProfilePicture)
		users.POST("/profile_picture/reset", h.ResetProfilePicture)
	}
}

// requireActor returns the authenticated user id or aborts with 401.
func requireActor(c *gin.Context) (uuid.UUID, bool) {
	id := middleware.ActorID(c)
	if id == nil {
		respond.Error(c, apperror.Unauthorized("Authentication required"))
		return uuid.Nil, false
	}
	return *id, true
}

func (h *UserHandler) Me(c *gin.Context) {
	me, ok := requireActor(c)
	if !ok {
		return
	}
	user, err := h.userService.Me(c.Request.Context(), me)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "User retrieved", user)
}

func (h *UserHandler) ByID(c *gin.Context) {
	user, err := h.userService.ByID(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "User retrieved", user)
}

func (h *UserHandler) ByUsername(c *gin.Context) {
	user, err := h.userService.ByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "User retrieved", user)
}

func (h *UserHandler) Recipes(c *gin.Context) {
	recipes, err := h.userService.RecipesOf(c.Request.Context(), middleware.ActorID(c), c.Param("user_id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, fmt.Sprintf("Found %d recipes", len(recipes)), recipes)
}

func (h *UserHandler) TopUsers(c *gin.Context) {
	users, err := h.userService.TopUsers(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Top users retrieved", users)
}

func (h *UserHandler) Favorites(c *gin.Context) {
	me, ok := requireActor(c)
	if !ok {
		return
	}
	recipes, err := h.userService.Favorites(c.Request.Context(), me)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, fmt.Sprintf("Found %d favorite recipes", len(recipes)), recipes)
}

func (h *UserHandler) FavoriteIDs(c *gin.Context) {
	me, ok := requireActor(c)
	if !ok {
		return
	}
	ids, err := h.userService.FavoriteIDs(c.Request.Context(), me)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Favorites retrieved", ids)
}

func (h *UserHandler) ToggleFavorite(c *gin.Context) {
	me, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := h.userService.ToggleFavorite(c.Request.Context(), me, c.Param("recipe_id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, favoriteMessage(result), result)
}

func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	me, ok := requireActor(c)
	if !ok {
		return
	}
	upload, closeUpload, err := formUpload(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	defer closeUpload()

	user, err := h.userService.SetProfilePicture(c.Request.Context(), me, upload)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Profile picture updated", user)
}

func (h *UserHandler) ResetProfilePicture(c *gin.Context) {
	me, ok := requireActor(c)
	if !ok {
		return
	}
	user, err := h.userService.ResetProfilePicture(c.Request.Context(), me)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Profile picture reset", user)
}

func favoriteMessage(result *service.FavoriteResult) string {
	if result.Liked {
		return "Recipe added to favorites"
	}
	return "Recipe removed from favorites"
}
