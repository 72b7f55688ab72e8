package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escola-viva/secretaria-service/internal/services"
	"github.com/escola-viva/secretaria-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Login authenticates with CPF and password and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateAccount provisions a login directly, for the secretariat.
func (h *AuthHandler) CreateAccount(c *gin.Context) {
	var req services.CreateAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// ListAccounts lists provisioned logins.
func (h *AuthHandler) ListAccounts(c *gin.Context) {
	limit, offset := parsePagination(c)

	accounts, total, err := h.service.ListAccounts(c.Request.Context(), currentCaller(c), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts": accounts,
		"total":    total,
	})
}
