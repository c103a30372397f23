package message

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/handler"
	"github.com/workstream/comms-api/internal/model"
	messagesvc "github.com/workstream/comms-api/internal/service/message"
	"github.com/workstream/comms-api/pkg/validator"
)

type Handler struct {
	service  *messagesvc.Service
	validate *validator.Validator
}

func NewHandler(service *messagesvc.Service, validate *validator.Validator) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	dm := rg.Group("/dm")
	dm.POST("/send", h.SendDirect)
	dm.GET("/conversation/:otherUserId", h.GetConversation)
	dm.GET("/conversations", h.ListConversations)

	messages := rg.Group("/messages")
	messages.POST("/:id/read", h.MarkRead)
	messages.POST("/:id/react", h.React)
	messages.POST("/:id/pin", h.Pin)

	rg.GET("/search", h.Search)
}

func (h *Handler) SendDirect(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req model.SendDirectMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	msg, err := h.service.SendDirect(c.Request.Context(), actor.CompanyID, actor.UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(msg))
}

func (h *Handler) GetConversation(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	otherID, err := uuid.Parse(c.Param("otherUserId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	conversation, err := h.service.GetConversation(c.Request.Context(), actor.CompanyID, actor.UserID, otherID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(conversation))
}

func (h *Handler) ListConversations(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	summaries, totalUnread, err := h.service.ListConversations(c.Request.Context(), actor.CompanyID, actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"conversations": summaries,
		"total_unread":  totalUnread,
	}))
}

func (h *Handler) MarkRead(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid message ID"))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), actor.UserID, messageID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) React(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid message ID"))
		return
	}

	var req model.ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.AddReaction(c.Request.Context(), actor.UserID, messageID, req.Emoji); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) Pin(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid message ID"))
		return
	}

	var req model.PinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.Pin(c.Request.Context(), actor.UserID, messageID, req.Pin); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) Search(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var q model.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if q.Term == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing search term"))
		return
	}

	results, err := h.service.Search(c.Request.Context(), actor.CompanyID, actor.UserID, &q)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"results": results,
		"count":   len(results),
	}))
}
