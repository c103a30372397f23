package channel

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/handler"
	"github.com/workstream/comms-api/internal/model"
	channelsvc "github.com/workstream/comms-api/internal/service/channel"
	messagesvc "github.com/workstream/comms-api/internal/service/message"
	"github.com/workstream/comms-api/pkg/validator"
)

type Handler struct {
	channels *channelsvc.Service
	messages *messagesvc.Service
	validate *validator.Validator
}

func NewHandler(channels *channelsvc.Service, messages *messagesvc.Service, validate *validator.Validator) *Handler {
	return &Handler{channels: channels, messages: messages, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	channels := rg.Group("/channels")
	channels.GET("", h.List)
	channels.POST("", h.Create)
	channels.GET("/:id", h.Get)
	channels.GET("/:id/messages", h.ListMessages)
	channels.POST("/:id/send", h.Send)
	channels.GET("/:id/pinned", h.ListPinned)
	channels.POST("/:id/join", h.Join)
	channels.POST("/:id/leave", h.Leave)
	channels.POST("/:id/invite", h.Invite)
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	channels, err := h.channels.List(c.Request.Context(), actor.CompanyID, actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(channels))
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req model.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	channel, err := h.channels.Create(c.Request.Context(), actor.CompanyID, actor.UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(channel))
}

func (h *Handler) Get(c *gin.Context) {
	if _, ok := handler.RequireActor(c); !ok {
		return
	}
	id, ok := handler.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	channel, err := h.channels.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(channel))
}

func (h *Handler) ListMessages(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	before, err := beforeParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid before cursor"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	messages, hasMore, err := h.messages.ListChannelMessages(c.Request.Context(), actor.UserID, id, before, limit)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"messages": messages,
		"has_more": hasMore,
	}))
}

func (h *Handler) Send(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.SendChannelMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	msg, err := h.messages.SendToChannel(c.Request.Context(), actor.CompanyID, actor.UserID, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(msg))
}

func (h *Handler) ListPinned(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	messages, err := h.messages.ListPinned(c.Request.Context(), actor.UserID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(messages))
}

func (h *Handler) Join(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.channels.Join(c.Request.Context(), id, actor.UserID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) Leave(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.channels.Leave(c.Request.Context(), id, actor.UserID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

type inviteRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

func (h *Handler) Invite(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.channels.Invite(c.Request.Context(), id, actor.UserID, req.UserID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// beforeParam parses an optional RFC3339 cursor, defaulting to now for
// the first page.
func beforeParam(c *gin.Context) (time.Time, error) {
	raw := c.Query("before")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339, raw)
}
