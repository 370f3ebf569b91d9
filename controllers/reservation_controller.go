package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-frontdesk/models"
	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

type reservationPayload struct {
	ReservationNo string `json:"reservationNo"`
	RoomNo        string `json:"roomNo" binding:"required"`

	Guest struct {
		Name        string     `json:"name" binding:"required"`
		Phone       string     `json:"phone" binding:"required"`
		Email       string     `json:"email"`
		Nationality string     `json:"nationality"`
		Passport    string     `json:"passport"`
		OTA         models.OTA `json:"ota"`
	} `json:"guest"`

	Arrival     string   `json:"arrival" binding:"required"`
	Departure   string   `json:"departure" binding:"required"`
	NumOfGuest  int      `json:"numOfGuest"`
	RoomDetails string   `json:"roomDetails"`
	OtherGuests []string `json:"otherGuest"`

	Payment struct {
		BookingFee  decimal.Decimal `json:"bookingFee"`
		SST         decimal.Decimal `json:"sst"`
		TourismTax  decimal.Decimal `json:"tourismTax"`
		FnfDiscount decimal.Decimal `json:"fnfDiscount"`
	} `json:"payment"`
}

type ReservationController struct {
	Svc *services.ReservationService
}

func NewReservationController(svc *services.ReservationService) *ReservationController {
	return &ReservationController{Svc: svc}
}

// GET /api/reservations?search=
func (rc *ReservationController) GetReservations(c *gin.Context) {
	list, err := rc.Svc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]reservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReservationResponse(r))
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

// GET /api/reservations/:id
func (rc *ReservationController) GetReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := rc.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, toReservationResponse(r))
}

// POST /api/reservations
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var p reservationPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	arrival, err := utils.ParseDate(p.Arrival)
	if err != nil {
		badRequest(c, "arrival: "+err.Error())
		return
	}
	departure, err := utils.ParseDate(p.Departure)
	if err != nil {
		badRequest(c, "departure: "+err.Error())
		return
	}

	r, err := rc.Svc.Reserve(c.Request.Context(), services.ReserveInput{
		ReservationNo: p.ReservationNo,
		RoomNo:        p.RoomNo,
		Guest: services.ReservationGuestInput{
			Name:        p.Guest.Name,
			Phone:       p.Guest.Phone,
			Email:       p.Guest.Email,
			Nationality: p.Guest.Nationality,
			Passport:    p.Guest.Passport,
			OTA:         p.Guest.OTA,
		},
		Arrival:     arrival,
		Departure:   departure,
		NumOfGuest:  p.NumOfGuest,
		RoomDetails: p.RoomDetails,
		OtherGuests: p.OtherGuests,
		BookingFee:  p.Payment.BookingFee,
		SST:         p.Payment.SST,
		TourismTax:  p.Payment.TourismTax,
		Discount:    p.Payment.FnfDiscount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, toReservationResponse(r))
}

// DELETE /api/reservations/:id
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := rc.Svc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, toReservationResponse(r))
}
