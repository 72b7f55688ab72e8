package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/services"
	"github.com/escola-viva/secretaria-service/internal/utils"
)

// ReservationHandler serves rooms and their reservations.
type ReservationHandler struct {
	BaseHandler
	service services.ReservationService
}

func NewReservationHandler(service services.ReservationService, logger utils.Logger) *ReservationHandler {
	return &ReservationHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== ROOMS =====

func (h *ReservationHandler) CreateRoom(c *gin.Context) {
	var req services.RoomRequest
	if !h.bindJSON(c, &req) {
		return
	}

	room, err := h.service.CreateRoom(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

func (h *ReservationHandler) UpdateRoom(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.RoomRequest
	if !h.bindJSON(c, &req) {
		return
	}

	room, err := h.service.UpdateRoom(c.Request.Context(), currentCaller(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

func (h *ReservationHandler) DeleteRoom(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteRoom(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context(), currentCaller(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// ===== RESERVATIONS =====

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req services.ReservationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	reservation, err := h.service.Create(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ReservationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	reservation, err := h.service.Update(c.Request.Context(), currentCaller(c), id, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

func (h *ReservationHandler) DeleteReservation(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.Delete(c.Request.Context(), currentCaller(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) ListReservations(c *gin.Context) {
	limit, offset := parsePagination(c)

	filters := repositories.ReservationFilters{
		RoomID:    queryUint(c, "room_id"),
		AccountID: queryUint(c, "account_id"),
		Limit:     limit,
		Offset:    offset,
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

	reservations, total, err := h.service.List(c.Request.Context(), currentCaller(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": reservations,
		"total":        total,
	})
}
