package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escola-viva/secretaria-service/internal/services"
	"github.com/escola-viva/secretaria-service/internal/utils"
)

type PasswordResetHandler struct {
	BaseHandler
	service services.PasswordResetService
}

func NewPasswordResetHandler(service services.PasswordResetService, logger utils.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Request starts a password reset. The response is identical whether or not
// the email maps to an account.
func (h *PasswordResetHandler) Request(c *gin.Context) {
	var req services.PasswordResetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.service.RequestReset(c.Request.Context(), req.Email); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Se o e-mail estiver cadastrado, você receberá um link de redefinição.",
	})
}

// Confirm finishes a password reset with the mailed token.
func (h *PasswordResetHandler) Confirm(c *gin.Context) {
	var req services.PasswordResetConfirm
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.service.ConfirmReset(c.Request.Context(), req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Senha redefinida com sucesso.",
	})
}
