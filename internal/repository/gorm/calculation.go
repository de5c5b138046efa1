package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medimanage/api/internal/domain/calculation"
)

type CalculationRepository struct {
	db *gorm.DB
}

func NewCalculationRepository(db *gorm.DB) *CalculationRepository {
	return &CalculationRepository{db: db}
}

// ReplaceForUser upserts the user's single live calculation, keyed by the
// unique user_id index. Concurrent submissions for one user resolve
// last-write-wins at the database.
func (r *CalculationRepository) ReplaceForUser(ctx context.Context, c *calculation.Calculation) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"from_date", "to_date", "num_days", "line_items", "final_cost", "updated_at",
		}),
	}).Create(c).Error
	if err != nil {
		return fmt.Errorf("upserting calculation: %w", err)
	}
	return nil
}

func (r *CalculationRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*calculation.Calculation, error) {
	var c calculation.Calculation
	err := r.db.WithContext(ctx).First(&c, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, calculation.ErrCalculationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying calculation: %w", err)
	}
	return &c, nil
}

func (r *CalculationRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&calculation.Calculation{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("deleting calculations: %w", err)
	}
	return nil
}
