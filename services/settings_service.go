package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hotel-frontdesk/models"
)

type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

type HotelSettingsInput struct {
	Name                      string
	Address                   string
	Phone                     string
	Email                     string
	Currency                  string
	DefaultSSTPercent         decimal.Decimal
	DefaultTourismTaxPerNight decimal.Decimal
}

// Get returns the hotel settings row, or a zero value before one is saved.
func (s *SettingsService) Get(ctx context.Context) (models.HotelSetting, error) {
	return loadSettings(s.DB.WithContext(ctx))
}

// Update overwrites the settings, creating the row on first save.
func (s *SettingsService) Update(ctx context.Context, in HotelSettingsInput) (models.HotelSetting, error) {
	if err := nonNegative("default sst", in.DefaultSSTPercent); err != nil {
		return models.HotelSetting{}, err
	}
	if err := nonNegative("default tourism tax", in.DefaultTourismTaxPerNight); err != nil {
		return models.HotelSetting{}, err
	}

	var hotel models.HotelSetting
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		hotel, err = loadSettings(tx)
		if err != nil {
			return err
		}

		hotel.Name = strings.TrimSpace(in.Name)
		hotel.Address = strings.TrimSpace(in.Address)
		hotel.Phone = strings.TrimSpace(in.Phone)
		hotel.Email = strings.TrimSpace(in.Email)
		if c := strings.TrimSpace(in.Currency); c != "" {
			hotel.Currency = c
		}
		if hotel.Currency == "" {
			hotel.Currency = "RM"
		}
		hotel.DefaultSSTPercent = in.DefaultSSTPercent
		hotel.DefaultTourismTaxPerNight = in.DefaultTourismTaxPerNight

		if err := tx.Save(&hotel).Error; err != nil {
			return persistence("save hotel settings", err)
		}
		return nil
	})
	if err != nil {
		return models.HotelSetting{}, passThrough("update hotel settings", err)
	}
	return hotel, nil
}
