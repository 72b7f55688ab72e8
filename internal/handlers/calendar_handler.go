package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/escola-viva/secretaria-service/internal/cache"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/services"
	"github.com/escola-viva/secretaria-service/internal/utils"
)

type CalendarHandler struct {
	BaseHandler
	service  services.CalendarService
	cacheMgr *cache.CacheManager
}

func NewCalendarHandler(service services.CalendarService, cacheMgr *cache.CacheManager, logger utils.Logger) *CalendarHandler {
	return &CalendarHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		cacheMgr:    cacheMgr,
	}
}

func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	var req services.CalendarEventRequest
	if !h.bindJSON(c, &req) {
		return
	}

	event, err := h.service.Create(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	cache.InvalidateCalendar(c.Request.Context(), h.cacheMgr)
	c.JSON(http.StatusCreated, event)
}

func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.CalendarEventRequest
	if !h.bindJSON(c, &req) {
		return
	}

	event, err := h.service.Update(c.Request.Context(), currentCaller(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	cache.InvalidateCalendar(c.Request.Context(), h.cacheMgr)
	c.JSON(http.StatusOK, event)
}

func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.Delete(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	cache.InvalidateCalendar(c.Request.Context(), h.cacheMgr)
	c.Status(http.StatusNoContent)
}

type calendarListResponse struct {
	Events []*models.CalendarEvent `json:"events"`
	Total  int64                   `json:"total"`
}

// ListEvents lists calendar events. The calendar is the same for every
// authenticated user, so pages are cached by their query string.
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	ctx := c.Request.Context()
	caller := currentCaller(c)

	limit, offset := parsePagination(c)
	filters := repositories.CalendarEventFilters{
		Limit:  limit,
		Offset: offset,
	}
	if from := c.Query("from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			filters.DateFrom = &parsed
		}
	}
	if to := c.Query("to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			filters.DateTo = &parsed
		}
	}

	var resp calendarListResponse
	err := h.cacheMgr.Calendar.CacheOrExecute(ctx, c.Request.URL.RawQuery, &resp, cache.CalendarCacheConfig.TTL, func() (interface{}, error) {
		events, total, err := h.service.List(ctx, caller, filters)
		if err != nil {
			return nil, err
		}
		return calendarListResponse{Events: events, Total: total}, nil
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
