package database

import (
	"context"
	"errors"

	"equiptrack/internal/models"

	"gorm.io/gorm"
)

// EquipmentStore is the gorm-backed access to the domain entities reminders
// originate from. Lookups return nil for missing rows so callers can treat
// concurrently deleted entities as a non-fatal outcome.
type EquipmentStore struct {
	db *gorm.DB
}

func NewEquipmentStore(db *gorm.DB) *EquipmentStore {
	return &EquipmentStore{db: db}
}

// GetItem returns an item by serial, or nil when it does not exist
func (s *EquipmentStore) GetItem(ctx context.Context, serial string) (*models.Item, error) {
	var item models.Item
	err := s.db.WithContext(ctx).Where("serial = ?", serial).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCalibration returns a calibration job, or nil when it does not exist
func (s *EquipmentStore) GetCalibration(ctx context.Context, id uint) (*models.Calibration, error) {
	var cal models.Calibration
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&cal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

// SaveCalibration persists back-filled calibration fields
func (s *EquipmentStore) SaveCalibration(ctx context.Context, calibration *models.Calibration) error {
	return s.db.WithContext(ctx).Save(calibration).Error
}

// GetRental returns a rental, or nil when it does not exist
func (s *EquipmentStore) GetRental(ctx context.Context, id uint) (*models.Rental, error) {
	var rental models.Rental
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rental).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

// GetMaintenance returns a maintenance job, or nil when it does not exist
func (s *EquipmentStore) GetMaintenance(ctx context.Context, id uint) (*models.Maintenance, error) {
	var m models.Maintenance
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveMaintenance persists back-filled maintenance fields
func (s *EquipmentStore) SaveMaintenance(ctx context.Context, maintenance *models.Maintenance) error {
	return s.db.WithContext(ctx).Save(maintenance).Error
}

// GetSchedule returns an inventory schedule, or nil when it does not exist
func (s *EquipmentStore) GetSchedule(ctx context.Context, id uint) (*models.InventorySchedule, error) {
	var sched models.InventorySchedule
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&sched).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sched, nil
}
