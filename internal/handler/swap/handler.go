package swap

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workstream/comms-api/internal/handler"
	"github.com/workstream/comms-api/internal/model"
	swapsvc "github.com/workstream/comms-api/internal/service/swap"
	"github.com/workstream/comms-api/pkg/validator"
)

type Handler struct {
	service  *swapsvc.Service
	validate *validator.Validator
}

func NewHandler(service *swapsvc.Service, validate *validator.Validator) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	swaps := rg.Group("/schedule-swap")
	swaps.POST("/request", h.Request)
	swaps.POST("/:id/respond", h.Respond)
	swaps.POST("/:id/resolve", h.Resolve)
	swaps.GET("/my-requests", h.MyRequests)
}

func (h *Handler) Request(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req model.RequestSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	swap, err := h.service.Request(c.Request.Context(), actor.CompanyID, actor.UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(swap))
}

func (h *Handler) Respond(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.RespondSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	swap, err := h.service.Respond(c.Request.Context(), actor.UserID, id, req.Accept)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(swap))
}

type resolveRequest struct {
	Approve bool `json:"approve"`
}

func (h *Handler) Resolve(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	swap, err := h.service.Resolve(c.Request.Context(), actor.UserID, actor.IsManager, id, req.Approve)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(swap))
}

func (h *Handler) MyRequests(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	lists, err := h.service.MyRequests(c.Request.Context(), actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(lists))
}
