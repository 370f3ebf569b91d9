package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"hotel-frontdesk/models"
)

type RoomTypeService struct {
	DB *gorm.DB
}

func NewRoomTypeService(db *gorm.DB) *RoomTypeService {
	return &RoomTypeService{DB: db}
}

func (s *RoomTypeService) Create(ctx context.Context, rt models.RoomType) (models.RoomType, error) {
	rt.ID = 0
	rt.TypeName = strings.TrimSpace(rt.TypeName)
	rt.Description = strings.TrimSpace(rt.Description)
	if rt.TypeName == "" {
		return models.RoomType{}, invalid("type name is required")
	}

	if err := s.DB.WithContext(ctx).Create(&rt).Error; err != nil {
		if isDuplicateKey(err) {
			return models.RoomType{}, fmt.Errorf("room type %q already exists: %w", rt.TypeName, ErrConflict)
		}
		return models.RoomType{}, persistence("create room type", err)
	}
	return rt, nil
}

func (s *RoomTypeService) GetAll(ctx context.Context) ([]models.RoomType, error) {
	types := []models.RoomType{}
	if err := s.DB.WithContext(ctx).Order("type_name ASC").Find(&types).Error; err != nil {
		return nil, persistence("list room types", err)
	}
	return types, nil
}
