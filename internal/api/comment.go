package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/recipehub/backend/internal/crud"
	"github.com/pageza/recipehub/backend/internal/service"
)

// RegisterCommentRoutes mounts the generic comment routes.
func RegisterCommentRoutes(protected *gin.RouterGroup, engine *service.CommentEngine) {
	crud.NewHandler(engine).RegisterRoutes(protected)
}
