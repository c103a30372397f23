package presence

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workstream/comms-api/internal/handler"
	"github.com/workstream/comms-api/internal/model"
	presencesvc "github.com/workstream/comms-api/internal/service/presence"
	"github.com/workstream/comms-api/pkg/validator"
)

type Handler struct {
	service  *presencesvc.Service
	validate *validator.Validator
}

func NewHandler(service *presencesvc.Service, validate *validator.Validator) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	presence := rg.Group("/presence")
	presence.POST("/update", h.Update)
	presence.POST("", h.Get)
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req model.UpdatePresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	presence, err := h.service.Update(c.Request.Context(), actor.UserID, req.Status, req.CustomMessage)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(presence))
}

func (h *Handler) Get(c *gin.Context) {
	if _, ok := handler.RequireActor(c); !ok {
		return
	}

	var req model.GetPresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	presences := h.service.Get(c.Request.Context(), req.UserIDs)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(presences))
}
