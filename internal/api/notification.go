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

// NotificationHandler serves the read-only notification routes and the
// narrow mark-as-read endpoints.
type NotificationHandler struct {
	notificationService service.INotificationService
	crud                *crud.Handler[models.Notification, *models.Notification]
}

func NewNotificationHandler(notificationService service.INotificationService, engine *service.NotificationEngine) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, crud: crud.NewHandler(engine)}
}

func (h *NotificationHandler) RegisterRoutes(protected *gin.RouterGroup) {
	h.crud.RegisterRoutes(protected)
	protected.PATCH("/my-notifications/:id", h.MarkRead)
	protected.POST("/my-notifications/read-all", h.MarkAllRead)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	payload, err := respond.BindJSON(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	result, err := h.notificationService.MarkRead(c.Request.Context(), middleware.ActorID(c), c.Param("id"), payload)
	if err != nil {
		respond.Error(c, err)
		return
	}
	message := "Notification marked as read"
	if result.AlreadyRead {
		message = "Notification already read"
	}
	respond.Success(c, http.StatusOK, message, result)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	me, ok := requireActor(c)
	if !ok {
		return
	}
	changed, err := h.notificationService.MarkAllRead(c.Request.Context(), me)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, fmt.Sprintf("Marked %d notifications as read", changed), gin.H{"updated": changed})
}
