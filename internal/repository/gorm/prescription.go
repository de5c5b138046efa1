package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medimanage/api/internal/domain/prescription"
)

type PrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *prescription.Prescription) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("inserting prescription: %w", err)
	}
	return nil
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	var p prescription.Prescription
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, prescription.ErrPrescriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying prescription: %w", err)
	}
	return &p, nil
}

func (r *PrescriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*prescription.Prescription, error) {
	var ps []*prescription.Prescription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&ps).Error
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}
	return ps, nil
}

func (r *PrescriptionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&prescription.Prescription{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("deleting prescriptions: %w", err)
	}
	return nil
}
