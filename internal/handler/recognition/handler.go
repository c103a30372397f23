package recognition

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/workstream/comms-api/internal/handler"
	"github.com/workstream/comms-api/internal/model"
	recognitionsvc "github.com/workstream/comms-api/internal/service/recognition"
	"github.com/workstream/comms-api/pkg/validator"
)

type Handler struct {
	service  *recognitionsvc.Service
	validate *validator.Validator
}

func NewHandler(service *recognitionsvc.Service, validate *validator.Validator) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	recognition := rg.Group("/recognition")
	recognition.GET("/badges", h.Badges)
	recognition.POST("/send", h.Send)
	recognition.GET("/feed", h.Feed)
	recognition.GET("/my-stats", h.MyStats)
}

func (h *Handler) Badges(c *gin.Context) {
	if _, ok := handler.RequireActor(c); !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.Badges()))
}

func (h *Handler) Send(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req model.SendRecognitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	recognition, err := h.service.Award(c.Request.Context(), actor.CompanyID, actor.UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(recognition))
}

func (h *Handler) Feed(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	feed, err := h.service.Feed(c.Request.Context(), actor.CompanyID, limit)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(feed))
}

func (h *Handler) MyStats(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	stats, err := h.service.MyStats(c.Request.Context(), actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}
