package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-frontdesk/clock"
	"hotel-frontdesk/models"
	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

type checkInPayload struct {
	RoomID        uint  `json:"roomId" binding:"required"`
	ReservationID *uint `json:"reservationId"`

	Guest struct {
		Name     string     `json:"name" binding:"required"`
		Phone    string     `json:"phone" binding:"required"`
		Email    string     `json:"email"`
		Country  string     `json:"country"`
		Passport string     `json:"passport"`
		RefID    string     `json:"refId"`
		OTA      models.OTA `json:"otas"`
	} `json:"guest"`

	Stay struct {
		Arrival    string               `json:"arrival" binding:"required"`
		Departure  string               `json:"departure" binding:"required"`
		Adults     int                  `json:"adults"`
		Children   int                  `json:"children"`
		Companions []services.Companion `json:"companions"`
	} `json:"stay"`

	Payment struct {
		RoomPrice     decimal.Decimal      `json:"roomPrice"`
		SST           *decimal.Decimal     `json:"sst"`
		TourismTax    *decimal.Decimal     `json:"tourismTax"`
		Discount      decimal.Decimal      `json:"discount"`
		PaidAmount    decimal.Decimal      `json:"paidAmount"`
		PaymentMethod models.PaymentMethod `json:"paymentMethod"`
		Remarks       string               `json:"remarks"`
	} `json:"payment"`
}

type stayoverPayload struct {
	NewDeparture      string               `json:"newDeparture" binding:"required"`
	AdditionalPayment decimal.Decimal      `json:"additionalPayment"`
	PaymentMethod     models.PaymentMethod `json:"paymentMethod"`
	Discount          decimal.Decimal      `json:"discount"`
}

type paymentPayload struct {
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

type stayPageResponse struct {
	Stays      []stayResponse `json:"stays"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	HasMore    bool           `json:"hasMore"`
}

type StayController struct {
	Svc   *services.StayService
	Clock clock.Clock
}

func NewStayController(svc *services.StayService, clk clock.Clock) *StayController {
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	return &StayController{Svc: svc, Clock: clk}
}

// GET /api/stays?page=&search=&status=
func (sc *StayController) GetStays(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	res, err := sc.Svc.List(c.Request.Context(), services.StayQuery{
		Page:   page,
		Search: c.Query("search"),
		Status: models.GuestStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	today := clock.Today(sc.Clock)
	out := stayPageResponse{
		Stays:      make([]stayResponse, 0, len(res.Stays)),
		Total:      res.Total,
		Page:       res.Page,
		TotalPages: res.TotalPages,
		HasMore:    res.HasMore,
	}
	for _, st := range res.Stays {
		out.Stays = append(out.Stays, toStayResponse(st, today))
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

// GET /api/stays/:id
func (sc *StayController) GetStay(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	stay, err := sc.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, toStayResponse(stay, clock.Today(sc.Clock)))
}

// GET /api/stays/:id/payments
func (sc *StayController) GetStayPayments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	payments, err := sc.Svc.Payments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, toPaymentResponses(payments))
}

// POST /api/stays
func (sc *StayController) CheckIn(c *gin.Context) {
	var p checkInPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	arrival, err := utils.ParseDate(p.Stay.Arrival)
	if err != nil {
		badRequest(c, "arrival: "+err.Error())
		return
	}
	departure, err := utils.ParseDate(p.Stay.Departure)
	if err != nil {
		badRequest(c, "departure: "+err.Error())
		return
	}

	stay, err := sc.Svc.CheckIn(c.Request.Context(), services.CheckInInput{
		RoomID:        p.RoomID,
		ReservationID: p.ReservationID,
		Guest: services.GuestInput{
			Name:     p.Guest.Name,
			Phone:    p.Guest.Phone,
			Email:    p.Guest.Email,
			Country:  p.Guest.Country,
			Passport: p.Guest.Passport,
			RefID:    p.Guest.RefID,
			OTA:      p.Guest.OTA,
		},
		Arrival:            arrival,
		Departure:          departure,
		Adults:             p.Stay.Adults,
		Children:           p.Stay.Children,
		Companions:         p.Stay.Companions,
		RoomPrice:          p.Payment.RoomPrice,
		SSTPercent:         p.Payment.SST,
		TourismTaxPerNight: p.Payment.TourismTax,
		Discount:           p.Payment.Discount,
		PaidAmount:         p.Payment.PaidAmount,
		PaymentMethod:      p.Payment.PaymentMethod,
		Remarks:            p.Payment.Remarks,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, toStayResponse(stay, clock.Today(sc.Clock)))
}

// PATCH /api/stays/:id/stayover
func (sc *StayController) Stayover(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var p stayoverPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	newDeparture, err := utils.ParseDate(p.NewDeparture)
	if err != nil {
		badRequest(c, "newDeparture: "+err.Error())
		return
	}

	stay, err := sc.Svc.Stayover(c.Request.Context(), id, services.StayoverInput{
		NewDeparture:      newDeparture,
		AdditionalPayment: p.AdditionalPayment,
		PaymentMethod:     p.PaymentMethod,
		ExtraDiscount:     p.Discount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, toStayResponse(stay, clock.Today(sc.Clock)))
}

// POST /api/stays/:id/payments
func (sc *StayController) RecordPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var p paymentPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	stay, err := sc.Svc.RecordPayment(c.Request.Context(), id, services.PaymentInput{
		Amount: p.Amount,
		Method: p.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, toStayResponse(stay, clock.Today(sc.Clock)))
}
