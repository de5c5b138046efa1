package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medimanage/api/internal/domain/calculation"
	"github.com/medimanage/api/internal/domain/dosage"
	"github.com/medimanage/api/internal/domain/medicine"
	"github.com/medimanage/api/pkg/metrics"
)

type CalculationService struct {
	repo         calculation.Repository
	medicineRepo medicine.Repository
	collector    *metrics.Collector
	auditSvc     *AuditService
	log          *zap.Logger
}

func NewCalculationService(repo calculation.Repository, medicineRepo medicine.Repository, collector *metrics.Collector, auditSvc *AuditService, log *zap.Logger) *CalculationService {
	return &CalculationService{
		repo:         repo,
		medicineRepo: medicineRepo,
		collector:    collector,
		auditSvc:     auditSvc,
		log:          log,
	}
}

// Calculate projects cost and quantity over the date range and stores the
// result as the user's single live calculation. Replaying the same request
// yields the same stored values; only the timestamps advance.
func (s *CalculationService) Calculate(ctx context.Context, userID uuid.UUID, from, to time.Time, items []dosage.DoseSpec, ip string) (*calculation.Calculation, error) {
	projection, err := dosage.Project(from, to, items)
	if err != nil {
		return nil, err
	}

	calc := calculation.FromProjection(userID, projection)
	if err := s.repo.ReplaceForUser(ctx, calc); err != nil {
		return nil, fmt.Errorf("storing calculation: %w", err)
	}

	s.collector.CalculationsTotal.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: userID, UserRole: "user",
		Action: "update", ResourceType: "calculation", ResourceID: calc.ID.String(), IPAddress: ip,
	})

	s.log.Info("calculation stored",
		zap.String("user_id", userID.String()),
		zap.Int("num_days", calc.NumDays),
		zap.Int("line_items", len(calc.LineItems)),
		zap.Float64("final_cost", calc.FinalCost),
	)

	return calc, nil
}

// CalculationDetail joins a stored line item with its catalog entry for
// display.
type CalculationDetail struct {
	Medicine *medicine.Medicine `json:"medicine"`
	Line     dosage.LineResult  `json:"line"`
}

// Fetch returns the user's live calculation with catalog details resolved.
// Line items whose medicine has since vanished from the catalog are returned
// without details rather than dropped.
func (s *CalculationService) Fetch(ctx context.Context, userID uuid.UUID) (*calculation.Calculation, []CalculationDetail, error) {
	calc, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]uuid.UUID, 0, len(calc.LineItems))
	for _, item := range calc.LineItems {
		ids = append(ids, item.MedicineID)
	}

	meds, err := s.medicineRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving medicines: %w", err)
	}

	byID := make(map[uuid.UUID]*medicine.Medicine, len(meds))
	for _, m := range meds {
		byID[m.ID] = m
	}

	details := make([]CalculationDetail, 0, len(calc.LineItems))
	for _, item := range calc.LineItems {
		details = append(details, CalculationDetail{
			Medicine: byID[item.MedicineID],
			Line:     item,
		})
	}

	return calc, details, nil
}

// AdjustLineItem edits one line of the live calculation: quantity zero
// removes the medicine, an existing line is overwritten, a new one appended.
func (s *CalculationService) AdjustLineItem(ctx context.Context, userID, medicineID uuid.UUID, quantity, cost float64, ip string) (*calculation.Calculation, error) {
	if quantity < 0 || cost < 0 {
		return nil, &ValidationError{Fields: []string{"quantity and cost must be non-negative"}}
	}

	calc, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !calc.AdjustLineItem(medicineID, quantity, cost) {
		return calc, nil
	}

	if err := s.repo.ReplaceForUser(ctx, calc); err != nil {
		return nil, fmt.Errorf("storing adjusted calculation: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: userID, UserRole: "user",
		Action: "update", ResourceType: "calculation", ResourceID: calc.ID.String(), IPAddress: ip,
		Changes: `{"action":"line_item_adjusted"}`,
	})

	return calc, nil
}
