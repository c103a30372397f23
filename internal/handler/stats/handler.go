package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workstream/comms-api/internal/handler"
	messagesvc "github.com/workstream/comms-api/internal/service/message"
	notificationsvc "github.com/workstream/comms-api/internal/service/notification"
	recognitionsvc "github.com/workstream/comms-api/internal/service/recognition"
	swapsvc "github.com/workstream/comms-api/internal/service/swap"
)

// Handler serves the aggregate counters the mobile home screen polls.
type Handler struct {
	messages      *messagesvc.Service
	notifications notificationsvc.Service
	recognitions  *recognitionsvc.Service
	swaps         *swapsvc.Service
}

func NewHandler(messages *messagesvc.Service, notifications notificationsvc.Service, recognitions *recognitionsvc.Service, swaps *swapsvc.Service) *Handler {
	return &Handler{
		messages:      messages,
		notifications: notifications,
		recognitions:  recognitions,
		swaps:         swaps,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.Stats)
}

func (h *Handler) Stats(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	conversations, unreadMessages, err := h.messages.ListConversations(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	unreadNotifications, err := h.notifications.CountUnread(ctx, actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	points, err := h.recognitions.LifetimePoints(ctx, actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	pendingSwaps, err := h.swaps.CountPending(ctx, actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"total_conversations":   len(conversations),
		"unread_messages":       unreadMessages,
		"unread_notifications":  unreadNotifications,
		"recognition_points":    points,
		"pending_swap_requests": pendingSwaps,
	}))
}
