package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medimanage/api/internal/domain/medicine"
)

type MedicineRepository struct {
	db *gorm.DB
}

func NewMedicineRepository(db *gorm.DB) *MedicineRepository {
	return &MedicineRepository{db: db}
}

func (r *MedicineRepository) Create(ctx context.Context, m *medicine.Medicine) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return medicine.ErrMedicineAlreadyExists
		}
		return fmt.Errorf("inserting medicine: %w", err)
	}
	return nil
}

func (r *MedicineRepository) GetByID(ctx context.Context, id uuid.UUID) (*medicine.Medicine, error) {
	var m medicine.Medicine
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, medicine.ErrMedicineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying medicine: %w", err)
	}
	return &m, nil
}

func (r *MedicineRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*medicine.Medicine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var meds []*medicine.Medicine
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&meds).Error; err != nil {
		return nil, fmt.Errorf("querying medicines: %w", err)
	}
	return meds, nil
}

func (r *MedicineRepository) GetByName(ctx context.Context, name string) (*medicine.Medicine, error) {
	var m medicine.Medicine
	err := r.db.WithContext(ctx).First(&m, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, medicine.ErrMedicineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying medicine by name: %w", err)
	}
	return &m, nil
}

func (r *MedicineRepository) Search(ctx context.Context, q *medicine.SearchQuery) ([]*medicine.Medicine, error) {
	tx := r.db.WithContext(ctx).Model(&medicine.Medicine{})

	if q.Term != "" {
		pattern := "%" + q.Term + "%"
		switch q.Field {
		case medicine.SearchByComposition:
			tx = tx.Where("short_composition1 ILIKE ? OR short_composition2 ILIKE ?", pattern, pattern)
		case medicine.SearchByManufacturer:
			tx = tx.Where("manufacturer ILIKE ?", pattern)
		default:
			tx = tx.Where("name ILIKE ?", pattern)
		}
	}

	var meds []*medicine.Medicine
	if err := tx.Limit(q.Limit).Find(&meds).Error; err != nil {
		return nil, fmt.Errorf("searching medicines: %w", err)
	}
	return meds, nil
}
