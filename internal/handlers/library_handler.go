package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/services"
	"github.com/escola-viva/secretaria-service/internal/utils"
)

// LibraryHandler serves the book catalog and the loan ledger.
type LibraryHandler struct {
	BaseHandler
	service services.LibraryService
}

func NewLibraryHandler(service services.LibraryService, logger utils.Logger) *LibraryHandler {
	return &LibraryHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== BOOKS =====

func (h *LibraryHandler) CreateBook(c *gin.Context) {
	var req services.BookRequest
	if !h.bindJSON(c, &req) {
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, book)
}

func (h *LibraryHandler) UpdateBook(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.BookRequest
	if !h.bindJSON(c, &req) {
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), currentCaller(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

func (h *LibraryHandler) DeleteBook(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) ListBooks(c *gin.Context) {
	limit, offset := parsePagination(c)

	books, total, err := h.service.ListBooks(c.Request.Context(), currentCaller(c), c.Query("search"), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books": books,
		"total": total,
	})
}

// ===== LOANS =====

func (h *LibraryHandler) CreateLoan(c *gin.Context) {
	var req services.LoanRequest
	if !h.bindJSON(c, &req) {
		return
	}

	loan, err := h.service.CreateLoan(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, loan)
}

func (h *LibraryHandler) ReturnLoan(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	loan, err := h.service.ReturnLoan(c.Request.Context(), currentCaller(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan)
}

func (h *LibraryHandler) DeleteLoan(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteLoan(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) ListLoans(c *gin.Context) {
	limit, offset := parsePagination(c)

	filters := repositories.LoanFilters{
		Returned:  queryBool(c, "returned"),
		StudentID: queryUint(c, "student_id"),
		Search:    queryString(c, "search"),
		Limit:     limit,
		Offset:    offset,
	}
	if kind := c.Query("kind"); kind != "" {
		k := models.LoanKind(kind)
		filters.Kind = &k
	}

	loans, total, err := h.service.ListLoans(c.Request.Context(), currentCaller(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loans": loans,
		"total": total,
	})
}

// ListPendingLoans lists loans not yet returned.
func (h *LibraryHandler) ListPendingLoans(c *gin.Context) {
	limit, offset := parsePagination(c)

	loans, total, err := h.service.ListPendingLoans(c.Request.Context(), currentCaller(c), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loans": loans,
		"total": total,
	})
}
