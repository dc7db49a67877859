package crud

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/respond"
)

// Handler exposes an Engine over HTTP.
type Handler[T any, PT interface {
	*T
	Entity
}] struct {
	engine *Engine[T, PT]
}

func NewHandler[T any, PT interface {
	*T
	Entity
}](engine *Engine[T, PT]) *Handler[T, PT] {
	return &Handler[T, PT]{engine: engine}
}

// RegisterRoutes mounts the routes enabled by the descriptor:
// GET /X, GET /X/:id, GET /my-X, POST /X, PATCH /X/:id, DELETE /X/:id.
func (h *Handler[T, PT]) RegisterRoutes(router *gin.RouterGroup) {
	routes := h.engine.desc.Routes
	base := "/" + h.engine.desc.Plural

	if routes&RouteList != 0 {
		router.GET(base, h.List)
	}
	if routes&RouteGet != 0 {
		router.GET(base+"/:id", h.Get)
	}
	if routes&RouteMine != 0 {
		router.GET("/my-"+h.engine.desc.Plural, h.Mine)
	}
	if routes&RouteCreate != 0 {
		router.POST(base, h.Create)
	}
	if routes&RouteUpdate != 0 {
		router.PATCH(base+"/:id", h.Update)
	}
	if routes&RouteDelete != 0 {
		router.DELETE(base+"/:id", h.Delete)
	}
}

func (h *Handler[T, PT]) listMessage(n int) string {
	if n == 0 {
		return fmt.Sprintf("No %s found", h.engine.desc.Plural)
	}
	return fmt.Sprintf("Found %d %s", n, h.engine.desc.Plural)
}

func (h *Handler[T, PT]) List(c *gin.Context) {
	items, err := h.engine.ListAll(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, h.listMessage(len(items)), items)
}

func (h *Handler[T, PT]) Get(c *gin.Context) {
	item, err := h.engine.GetOne(c.Request.Context(), middleware.ActorID(c), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, fmt.Sprintf("%s retrieved", h.engine.desc.Singular), item)
}

func (h *Handler[T, PT]) Mine(c *gin.Context) {
	items, err := h.engine.ListMine(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, h.listMessage(len(items)), items)
}

func (h *Handler[T, PT]) Create(c *gin.Context) {
	payload, err := respond.BindJSON(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	item, err := h.engine.Create(c.Request.Context(), middleware.ActorID(c), payload)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusCreated, fmt.Sprintf("%s created successfully", h.engine.desc.Singular), item)
}

func (h *Handler[T, PT]) Update(c *gin.Context) {
	payload, err := respond.BindJSON(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	item, err := h.engine.Update(c.Request.Context(), middleware.ActorID(c), c.Param("id"), payload)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, fmt.Sprintf("%s updated successfully", h.engine.desc.Singular), item)
}

func (h *Handler[T, PT]) Delete(c *gin.Context) {
	msg, err := h.engine.Delete(c.Request.Context(), middleware.ActorID(c), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, msg, gin.H{"id": c.Param("id")})
}
