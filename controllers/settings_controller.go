package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

type hotelSettingsPayload struct {
	Name              string          `json:"name"`
	Address           string          `json:"address"`
	Phone             string          `json:"phone"`
	Email             string          `json:"email"`
	Currency          string          `json:"currency"`
	DefaultSST        decimal.Decimal `json:"defaultSst"`
	DefaultTourismTax decimal.Decimal `json:"defaultTourismTax"`
}

type SettingsController struct {
	Svc *services.SettingsService
}

func NewSettingsController(svc *services.SettingsService) *SettingsController {
	return &SettingsController{Svc: svc}
}

func (sc *SettingsController) GetHotelSettings(c *gin.Context) {
	hotel, err := sc.Svc.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"hotel": toHotelSettingsResponse(hotel)})
}

func (sc *SettingsController) UpdateHotelSettings(c *gin.Context) {
	var payload hotelSettingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	hotel, err := sc.Svc.Update(c.Request.Context(), services.HotelSettingsInput{
		Name:                      payload.Name,
		Address:                   payload.Address,
		Phone:                     payload.Phone,
		Email:                     payload.Email,
		Currency:                  payload.Currency,
		DefaultSSTPercent:         payload.DefaultSST,
		DefaultTourismTaxPerNight: payload.DefaultTourismTax,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"hotel": toHotelSettingsResponse(hotel)})
}
