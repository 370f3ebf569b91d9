package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/clock"
	"hotel-frontdesk/models"
	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

type createRoomPayload struct {
	RoomNo   string `json:"roomNo" binding:"required"`
	RoomType string `json:"roomType" binding:"required"`
	Floor    string `json:"roomFloor" binding:"required"`
}

type roomStatusPayload struct {
	Status models.RoomStatus `json:"roomStatus" binding:"required"`
}

type checkoutPayload struct {
	Status models.GuestStatus `json:"status"`
}

type checkoutResponse struct {
	Room      models.Room  `json:"room"`
	Stay      stayResponse `json:"stay"`
	DueAmount string       `json:"dueAmount"`
}

type RoomController struct {
	Rooms        *services.RoomService
	Stays        *services.StayService
	Availability *services.AvailabilityService
	Clock        clock.Clock
}

func NewRoomController(rooms *services.RoomService, stays *services.StayService, availability *services.AvailabilityService, clk clock.Clock) *RoomController {
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	return &RoomController{Rooms: rooms, Stays: stays, Availability: availability, Clock: clk}
}

// GET /api/rooms?search=
func (rc *RoomController) GetRooms(c *gin.Context) {
	board, err := rc.Rooms.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, board)
}

// GET /api/rooms/stats
func (rc *RoomController) GetRoomStats(c *gin.Context) {
	stats, err := rc.Rooms.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, stats)
}

// GET /api/rooms/:id
func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	room, err := rc.Rooms.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// POST /api/rooms
func (rc *RoomController) CreateRoom(c *gin.Context) {
	var payload createRoomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	room, err := rc.Rooms.CreateRoom(c.Request.Context(), services.CreateRoomInput{
		RoomNo:   payload.RoomNo,
		RoomType: payload.RoomType,
		Floor:    payload.Floor,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

// PATCH /api/rooms/:id/status
func (rc *RoomController) UpdateRoomStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload roomStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	room, err := rc.Rooms.SetStatus(c.Request.Context(), id, payload.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// POST /api/rooms/:id/checkout
func (rc *RoomController) CheckoutRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload checkoutPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			badRequest(c, "Invalid request payload: "+err.Error())
			return
		}
	}

	res, err := rc.Stays.CheckOut(c.Request.Context(), id, payload.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, checkoutResponse{
		Room:      res.Room,
		Stay:      toStayResponse(res.Stay, clock.Today(rc.Clock)),
		DueAmount: services.Money(res.DueAmount),
	})
}

// PATCH /api/rooms/:id/clean
func (rc *RoomController) CleanRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	room, err := rc.Rooms.Clean(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// POST /api/rooms/due-out
func (rc *RoomController) MarkDueOut(c *gin.Context) {
	res, err := rc.Rooms.MarkDueOut(c.Request.Context())
	if err != nil && res.Updated == 0 {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// GET /api/rooms/:id/availability?arrival=&departure=
func (rc *RoomController) CheckAvailability(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	arrival, err := utils.ParseDate(c.Query("arrival"))
	if err != nil {
		badRequest(c, "arrival: "+err.Error())
		return
	}
	departure, err := utils.ParseDate(c.Query("departure"))
	if err != nil {
		badRequest(c, "departure: "+err.Error())
		return
	}

	av, err := rc.Availability.Check(c.Request.Context(), id, arrival, departure)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, av)
}
