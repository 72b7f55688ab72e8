package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escola-viva/secretaria-service/internal/cache"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/services"
	"github.com/escola-viva/secretaria-service/internal/utils"
)

type LessonPlanHandler struct {
	BaseHandler
	service  services.LessonPlanService
	cacheMgr *cache.CacheManager
}

func NewLessonPlanHandler(service services.LessonPlanService, cacheMgr *cache.CacheManager, logger utils.Logger) *LessonPlanHandler {
	return &LessonPlanHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		cacheMgr:    cacheMgr,
	}
}

func (h *LessonPlanHandler) CreateLessonPlan(c *gin.Context) {
	var req services.LessonPlanRequest
	if !h.bindJSON(c, &req) {
		return
	}

	plan, err := h.service.Create(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	cache.InvalidateOptions(c.Request.Context(), h.cacheMgr)
	c.JSON(http.StatusCreated, plan)
}

func (h *LessonPlanHandler) UpdateLessonPlan(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.LessonPlanRequest
	if !h.bindJSON(c, &req) {
		return
	}

	plan, err := h.service.Update(c.Request.Context(), currentCaller(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	cache.InvalidateOptions(c.Request.Context(), h.cacheMgr)
	c.JSON(http.StatusOK, plan)
}

func (h *LessonPlanHandler) DeleteLessonPlan(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.Delete(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	cache.InvalidateOptions(c.Request.Context(), h.cacheMgr)
	c.Status(http.StatusNoContent)
}

func (h *LessonPlanHandler) GetLessonPlan(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	plan, err := h.service.Get(c.Request.Context(), currentCaller(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *LessonPlanHandler) ListLessonPlans(c *gin.Context) {
	limit, offset := parsePagination(c)

	filters := repositories.LessonPlanFilters{
		TeacherID:  queryUint(c, "teacher_id"),
		ClassGroup: queryString(c, "class_choice"),
		Shift:      queryString(c, "shift"),
		Limit:      limit,
		Offset:     offset,
	}

	plans, total, err := h.service.List(c.Request.Context(), currentCaller(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lesson_plans": plans,
		"total":        total,
	})
}

// GetOptions returns the distinct class groups and shifts for form selects.
// The result is cached since it is derived from every plan on record.
func (h *LessonPlanHandler) GetOptions(c *gin.Context) {
	ctx := c.Request.Context()
	caller := currentCaller(c)

	var options services.LessonPlanOptions
	err := h.cacheMgr.Options.CacheOrExecute(ctx, "lesson_plans", &options, cache.OptionsCacheConfig.TTL, func() (interface{}, error) {
		opts, err := h.service.Options(ctx, caller)
		if err != nil {
			return nil, err
		}
		return opts, nil
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, options)
}
