package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipehub/backend/internal/crud"
	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/respond"
	"github.com/pageza/recipehub/backend/internal/service"
)

// RecipeHandler serves the generic recipe routes plus likes, popularity
// and image uploads.
type RecipeHandler struct {
	recipeService service.IRecipeService
	crud          *crud.Handler[models.Recipe, *models.Recipe]
}

func NewRecipeHandler(recipeService service.IRecipeService, engine *service.RecipeEngine) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService, crud: crud.NewHandler(engine)}
}

func (h *RecipeHandler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/recipes/popular", h.Popular)
	protected.POST("/recipes/:id/like", h.Like)
	protected.PUT("/recipes/:id/image", h.UploadImage)
	h.crud.RegisterRoutes(protected)
}

func (h *RecipeHandler) Like(c *gin.Context) {
	me, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := h.recipeService.ToggleFavorite(c.Request.Context(), me, c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	message := "Recipe unliked"
	if result.Liked {
		message = "Recipe liked"
	}
	respond.Success(c, http.StatusOK, message, result)
}

func (h *RecipeHandler) Popular(c *gin.Context) {
	recipes, err := h.recipeService.Popular(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, fmt.Sprintf("Found %d popular recipes", len(recipes)), recipes)
}

func (h *RecipeHandler) UploadImage(c *gin.Context) {
	upload, closeUpload, err := formUpload(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	defer closeUpload()

	recipe, err := h.recipeService.SetImage(c.Request.Context(), middleware.ActorID(c), c.Param("id"), upload)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Recipe image updated", recipe)
}
