package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ivanjorgee/maxconnect/internal/leads/service"
	"github.com/ivanjorgee/maxconnect/internal/leads/transport"
	"github.com/ivanjorgee/maxconnect/platform/httpkit"
	"github.com/ivanjorgee/maxconnect/platform/validator"
)

// SweepEnqueuer queues an out-of-schedule follow-up sweep on the task
// queue. Nil when no queue backend is configured.
type SweepEnqueuer interface {
	EnqueueFollowupSweep(ctx context.Context) error
}

type Handler struct {
	svc      *service.Service
	val      *validator.Validator
	enqueuer SweepEnqueuer
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator, enqueuer SweepEnqueuer) *Handler {
	return &Handler{svc: svc, val: val, enqueuer: enqueuer}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/macro", h.ApplyMacro)
	rg.POST("/:id/followup-conversation", h.ConversationFollowup)
	rg.GET("/:id/interactions", h.ListInteractions)
	rg.POST("/:id/interactions", h.LogInteraction)
}

// RegisterCronRoutes mounts the sweep endpoints behind the cron-secret gate.
func (h *Handler) RegisterCronRoutes(rg *gin.RouterGroup) {
	rg.POST("/followups", h.RunFollowupSweep)
	rg.POST("/no-response-stop", h.StopUnresponsive)
	if h.enqueuer != nil {
		rg.POST("/followups/enqueue", h.EnqueueFollowupSweep)
	}
}

// EnqueueFollowupSweep hands the sweep to the task queue instead of running
// it inline, for operators that want the request back immediately.
func (h *Handler) EnqueueFollowupSweep(c *gin.Context) {
	if err := h.enqueuer.EnqueueFollowupSweep(c.Request.Context()); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to enqueue sweep", nil)
		return
	}
	httpkit.JSON(c, http.StatusAccepted, gin.H{"queued": true})
}

// RegisterCatalogRoutes mounts the read-only template catalog.
func (h *Handler) RegisterCatalogRoutes(rg *gin.RouterGroup) {
	rg.GET("/cadence-templates", h.Templates)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	detail, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, detail)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ApplyMacro(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.ApplyMacroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	detail, err := h.svc.ApplyMacro(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, detail)
}

func (h *Handler) ConversationFollowup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	detail, err := h.svc.RegisterConversationFollowup(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, detail)
}

func (h *Handler) ListInteractions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		limit = parsed
	}

	items, err := h.svc.ListInteractions(c.Request.Context(), id, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, items)
}

func (h *Handler) LogInteraction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.LogInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	interaction, err := h.svc.LogInteraction(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, interaction)
}

func (h *Handler) Templates(c *gin.Context) {
	httpkit.OK(c, h.svc.Templates())
}

func (h *Handler) RunFollowupSweep(c *gin.Context) {
	result := h.svc.RunFollowupSweep(c.Request.Context())
	status := http.StatusOK
	if !result.OK {
		status = http.StatusInternalServerError
	}
	httpkit.JSON(c, status, result)
}

func (h *Handler) StopUnresponsive(c *gin.Context) {
	result, err := h.svc.StopUnresponsive(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
