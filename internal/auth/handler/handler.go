package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanjorgee/maxconnect/internal/auth/service"
	"github.com/ivanjorgee/maxconnect/internal/auth/transport"
	"github.com/ivanjorgee/maxconnect/platform/httpkit"
	"github.com/ivanjorgee/maxconnect/platform/validator"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	resp, err := h.svc.SignIn(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := httpkit.GetUserID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	profile, err := h.svc.Me(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, profile)
}
