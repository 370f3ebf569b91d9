package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{services.ErrRoomNotFound, "room_not_found"},
	{services.ErrStayNotFound, "stay_not_found"},
	{services.ErrReservationNotFound, "reservation_not_found"},
	{services.ErrDuplicateRoom, "duplicate_room"},
	{services.ErrRoomUnavailable, "room_unavailable"},
	{services.ErrInvalidTransition, "invalid_transition"},
	{services.ErrConcurrentUpdate, "concurrent_update"},
	{services.ErrNoActiveStay, "no_active_stay"},
	{services.ErrReservationClosed, "reservation_closed"},
}

// respondError maps a service error kind to its HTTP status.
func respondError(c *gin.Context, err error) {
	code := "internal_error"
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			code = ec.code
			break
		}
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		if code == "internal_error" {
			code = "validation_error"
		}
		utils.JSONError(c, http.StatusBadRequest, code, err.Error())
	case errors.Is(err, services.ErrNotFound):
		if code == "internal_error" {
			code = "not_found"
		}
		utils.JSONError(c, http.StatusNotFound, code, err.Error())
	case errors.Is(err, services.ErrConflict):
		if code == "internal_error" {
			code = "conflict"
		}
		utils.JSONError(c, http.StatusConflict, code, err.Error())
	default:
		_ = c.Error(err)
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.JSONError(c, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func badRequest(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusBadRequest, "validation_error", message)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
