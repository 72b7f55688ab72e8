package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escola-viva/secretaria-service/internal/services"
	"github.com/escola-viva/secretaria-service/internal/utils"
)

// ProfileHandler serves guardian and teacher profiles.
type ProfileHandler struct {
	BaseHandler
	service services.ProfileService
}

func NewProfileHandler(service services.ProfileService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== GUARDIANS =====

func (h *ProfileHandler) CreateGuardian(c *gin.Context) {
	var req services.GuardianRequest
	if !h.bindJSON(c, &req) {
		return
	}

	guardian, err := h.service.CreateGuardian(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, guardian)
}

func (h *ProfileHandler) UpdateGuardian(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.GuardianRequest
	if !h.bindJSON(c, &req) {
		return
	}

	guardian, err := h.service.UpdateGuardian(c.Request.Context(), currentCaller(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, guardian)
}

func (h *ProfileHandler) DeleteGuardian(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteGuardian(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProfileHandler) GetGuardian(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	guardian, err := h.service.GetGuardian(c.Request.Context(), currentCaller(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, guardian)
}

func (h *ProfileHandler) ListGuardians(c *gin.Context) {
	limit, offset := parsePagination(c)

	guardians, total, err := h.service.ListGuardians(c.Request.Context(), currentCaller(c), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guardians": guardians,
		"total":     total,
	})
}

// ===== TEACHERS =====

func (h *ProfileHandler) CreateTeacher(c *gin.Context) {
	var req services.TeacherRequest
	if !h.bindJSON(c, &req) {
		return
	}

	teacher, err := h.service.CreateTeacher(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, teacher)
}

func (h *ProfileHandler) UpdateTeacher(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.TeacherRequest
	if !h.bindJSON(c, &req) {
		return
	}

	teacher, err := h.service.UpdateTeacher(c.Request.Context(), currentCaller(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, teacher)
}

func (h *ProfileHandler) DeleteTeacher(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteTeacher(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProfileHandler) GetTeacher(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	teacher, err := h.service.GetTeacher(c.Request.Context(), currentCaller(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, teacher)
}

func (h *ProfileHandler) ListTeachers(c *gin.Context) {
	limit, offset := parsePagination(c)

	teachers, total, err := h.service.ListTeachers(c.Request.Context(), currentCaller(c), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"teachers": teachers,
		"total":    total,
	})
}
