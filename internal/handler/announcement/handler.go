package announcement

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workstream/comms-api/internal/handler"
	"github.com/workstream/comms-api/internal/model"
	announcementsvc "github.com/workstream/comms-api/internal/service/announcement"
	"github.com/workstream/comms-api/pkg/validator"
)

type Handler struct {
	service  *announcementsvc.Service
	validate *validator.Validator
}

func NewHandler(service *announcementsvc.Service, validate *validator.Validator) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	announcements := rg.Group("/announcements")
	announcements.GET("", h.List)
	announcements.POST("", h.Post)
	announcements.POST("/:id/acknowledge", h.Acknowledge)
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	includeExpired := c.Query("include_expired") == "true"

	announcements, err := h.service.List(c.Request.Context(), actor.CompanyID, actor.UserID, includeExpired)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(announcements))
}

func (h *Handler) Post(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	if !actor.IsManager {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("only managers can post announcements"))
		return
	}

	var req model.PostAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	announcement, err := h.service.Post(c.Request.Context(), actor.CompanyID, actor.UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(announcement))
}

func (h *Handler) Acknowledge(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Acknowledge(c.Request.Context(), id, actor.UserID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
