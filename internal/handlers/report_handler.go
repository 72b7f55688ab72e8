package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/services"
	"github.com/escola-viva/secretaria-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves spreadsheet downloads.
type ReportHandler struct {
	BaseHandler
	service services.ReportService
}

func NewReportHandler(service services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *ReportHandler) sendSpreadsheet(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// StudentsReport downloads the student roster inside the caller's scope.
func (h *ReportHandler) StudentsReport(c *gin.Context) {
	filters := repositories.StudentFilters{
		SchoolYear: queryString(c, "school_year"),
		Active:     queryBool(c, "active"),
	}
	if group := c.Query("class_choice"); group != "" {
		filters.ClassGroups = []string{group}
	}

	data, err := h.service.StudentsReport(c.Request.Context(), currentCaller(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendSpreadsheet(c, "alunos", data)
}

// GradesReport downloads grades inside the caller's scope.
func (h *ReportHandler) GradesReport(c *gin.Context) {
	filters := repositories.GradeFilters{
		TermID:  queryUint(c, "term_id"),
		Subject: queryString(c, "subject"),
	}
	if id := queryUint(c, "student_id"); id != nil {
		filters.StudentIDs = []uint{*id}
	}

	data, err := h.service.GradesReport(c.Request.Context(), currentCaller(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendSpreadsheet(c, "notas", data)
}
