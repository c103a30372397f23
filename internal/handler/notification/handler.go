package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workstream/comms-api/internal/handler"
	"github.com/workstream/comms-api/internal/model"
	notificationsvc "github.com/workstream/comms-api/internal/service/notification"
	"github.com/workstream/comms-api/pkg/validator"
)

type Handler struct {
	service  notificationsvc.Service
	validate *validator.Validator
}

func NewHandler(service notificationsvc.Service, validate *validator.Validator) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	notifications.GET("", h.List)
	notifications.POST("/mark-read", h.MarkRead)
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	unreadOnly := c.Query("unread_only") == "true"

	feed, err := h.service.List(c.Request.Context(), actor.UserID, unreadOnly)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(feed))
}

func (h *Handler) MarkRead(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req model.MarkNotificationsReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), actor.UserID, req.NotificationIDs); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
