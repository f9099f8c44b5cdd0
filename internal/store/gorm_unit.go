package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/models"
	"gorm.io/gorm"
)

// GormUnitStore persists administrative units in Postgres via GORM.
type GormUnitStore struct {
	db *gorm.DB
}

func NewGormUnitStore(db *gorm.DB) *GormUnitStore {
	return &GormUnitStore{db: db}
}

func (s *GormUnitStore) ByID(ctx context.Context, id uuid.UUID) (*models.AdminUnit, error) {
	var unit models.AdminUnit
	if err := s.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &unit, nil
}

func (s *GormUnitStore) ByIDs(ctx context.Context, ids []uuid.UUID) ([]models.AdminUnit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var units []models.AdminUnit
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to load units: %w", err)
	}
	return units, nil
}

func (s *GormUnitStore) All(ctx context.Context) ([]models.AdminUnit, error) {
	var units []models.AdminUnit
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

func (s *GormUnitStore) Children(ctx context.Context, parentID uuid.UUID) ([]models.AdminUnit, error) {
	var units []models.AdminUnit
	if err := s.db.WithContext(ctx).Where("parent_id = ?", parentID).Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to load children: %w", err)
	}
	return units, nil
}

func (s *GormUnitStore) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AdminUnit{}).Where("parent_id = ?", parentID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return count, nil
}

func (s *GormUnitStore) Create(ctx context.Context, unit *models.AdminUnit) error {
	if err := s.db.WithContext(ctx).Create(unit).Error; err != nil {
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

func (s *GormUnitStore) SetFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := s.db.WithContext(ctx).Model(&models.AdminUnit{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update unit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormUnitStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.AdminUnit{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete unit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
