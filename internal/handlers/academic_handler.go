package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/services"
	"github.com/escola-viva/secretaria-service/internal/utils"
)

// AcademicHandler serves terms, grades, pending tasks, warnings and
// suspensions.
type AcademicHandler struct {
	BaseHandler
	service services.AcademicService
}

func NewAcademicHandler(service services.AcademicService, logger utils.Logger) *AcademicHandler {
	return &AcademicHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func studentScopedFilters(c *gin.Context) repositories.StudentScopedFilters {
	limit, offset := parsePagination(c)
	filters := repositories.StudentScopedFilters{
		Limit:  limit,
		Offset: offset,
	}
	if id := queryUint(c, "student_id"); id != nil {
		filters.StudentIDs = []uint{*id}
	}
	return filters
}

// ===== TERMS =====

func (h *AcademicHandler) CreateTerm(c *gin.Context) {
	var req services.TermRequest
	if !h.bindJSON(c, &req) {
		return
	}

	term, err := h.service.CreateTerm(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, term)
}

func (h *AcademicHandler) UpdateTerm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.TermRequest
	if !h.bindJSON(c, &req) {
		return
	}

	term, err := h.service.UpdateTerm(c.Request.Context(), currentCaller(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, term)
}

func (h *AcademicHandler) DeleteTerm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteTerm(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AcademicHandler) ListTerms(c *gin.Context) {
	terms, err := h.service.ListTerms(c.Request.Context(), currentCaller(c), c.Query("school_year"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, terms)
}

// ===== GRADES =====

func (h *AcademicHandler) CreateGrade(c *gin.Context) {
	var req services.GradeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	grade, err := h.service.CreateGrade(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grade)
}

func (h *AcademicHandler) UpdateGrade(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.GradeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	grade, err := h.service.UpdateGrade(c.Request.Context(), currentCaller(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grade)
}

func (h *AcademicHandler) DeleteGrade(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteGrade(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AcademicHandler) ListGrades(c *gin.Context) {
	limit, offset := parsePagination(c)

	filters := repositories.GradeFilters{
		TermID:  queryUint(c, "term_id"),
		Subject: queryString(c, "subject"),
		Limit:   limit,
		Offset:  offset,
	}
	if id := queryUint(c, "student_id"); id != nil {
		filters.StudentIDs = []uint{*id}
	}

	grades, total, err := h.service.ListGrades(c.Request.Context(), currentCaller(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"grades": grades,
		"total":  total,
	})
}

// ===== PENDING TASKS =====

func (h *AcademicHandler) CreatePendingTask(c *gin.Context) {
	var req services.PendingTaskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.service.CreatePendingTask(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *AcademicHandler) UpdatePendingTask(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.PendingTaskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.service.UpdatePendingTask(c.Request.Context(), currentCaller(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *AcademicHandler) DeletePendingTask(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeletePendingTask(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AcademicHandler) ListPendingTasks(c *gin.Context) {
	tasks, total, err := h.service.ListPendingTasks(c.Request.Context(), currentCaller(c), studentScopedFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pending_tasks": tasks,
		"total":         total,
	})
}

// ===== WARNINGS =====

func (h *AcademicHandler) CreateWarning(c *gin.Context) {
	var req services.WarningRequest
	if !h.bindJSON(c, &req) {
		return
	}

	warning, err := h.service.CreateWarning(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, warning)
}

func (h *AcademicHandler) DeleteWarning(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteWarning(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AcademicHandler) ListWarnings(c *gin.Context) {
	warnings, total, err := h.service.ListWarnings(c.Request.Context(), currentCaller(c), studentScopedFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"warnings": warnings,
		"total":    total,
	})
}

// ===== SUSPENSIONS =====

func (h *AcademicHandler) CreateSuspension(c *gin.Context) {
	var req services.SuspensionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	suspension, err := h.service.CreateSuspension(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, suspension)
}

func (h *AcademicHandler) DeleteSuspension(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteSuspension(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AcademicHandler) ListSuspensions(c *gin.Context) {
	suspensions, total, err := h.service.ListSuspensions(c.Request.Context(), currentCaller(c), studentScopedFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suspensions": suspensions,
		"total":       total,
	})
}
