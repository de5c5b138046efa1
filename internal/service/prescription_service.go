package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medimanage/api/internal/domain/dosage"
	"github.com/medimanage/api/internal/domain/prescription"
	"github.com/medimanage/api/pkg/metrics"
)

type PrescriptionService struct {
	repo          prescription.Repository
	collector     *metrics.Collector
	auditSvc      *AuditService
	log           *zap.Logger
	lookaheadDays int
}

func NewPrescriptionService(repo prescription.Repository, collector *metrics.Collector, auditSvc *AuditService, log *zap.Logger, lookaheadDays int) *PrescriptionService {
	return &PrescriptionService{
		repo:          repo,
		collector:     collector,
		auditSvc:      auditSvc,
		log:           log,
		lookaheadDays: lookaheadDays,
	}
}

// Create promotes a set of dosing line items into a durable prescription.
// Prescriptions are read-only after creation; only account deletion removes
// them.
func (s *PrescriptionService) Create(ctx context.Context, cmd *prescription.CreatePrescriptionCommand, ip string) (*prescription.Prescription, error) {
	if dosage.Truncate(cmd.EndDate).Before(dosage.Truncate(cmd.StartDate)) {
		return nil, prescription.ErrInvalidDateRange
	}
	if len(cmd.Medicines) == 0 {
		return nil, prescription.ErrNoMedicines
	}

	var fields []string
	for i, m := range cmd.Medicines {
		if m.MedicineID == uuid.Nil {
			fields = append(fields, fmt.Sprintf("medicines[%d].medicine_id must be a valid reference", i))
		}
		if m.MedicineName == "" {
			fields = append(fields, fmt.Sprintf("medicines[%d].medicine_name is required", i))
		}
		if m.DoseSize <= 0 {
			fields = append(fields, fmt.Sprintf("medicines[%d].dose_size must be positive", i))
		}
		if m.FrequencyCount <= 0 {
			fields = append(fields, fmt.Sprintf("medicines[%d].frequency_count must be positive", i))
		}
		if !m.FrequencyUnit.IsValid() {
			fields = append(fields, fmt.Sprintf("medicines[%d].frequency_unit must be one of DAY, WEEK, MONTH", i))
		}
		if len(m.WeeklyDays) > m.FrequencyCount {
			fields = append(fields, fmt.Sprintf("medicines[%d].weekly_days cannot exceed the frequency count", i))
		}
		if len(m.MonthlyDates) > m.FrequencyCount {
			fields = append(fields, fmt.Sprintf("medicines[%d].monthly_dates cannot exceed the frequency count", i))
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	medicines := make([]prescription.Medicine, len(cmd.Medicines))
	copy(medicines, cmd.Medicines)
	for i := range medicines {
		// Only the set selected by the unit survives storage.
		if medicines[i].FrequencyUnit != dosage.UnitWeek {
			medicines[i].WeeklyDays = nil
		}
		if medicines[i].FrequencyUnit != dosage.UnitMonth {
			medicines[i].MonthlyDates = nil
		}
	}

	p := &prescription.Prescription{
		UserID:    cmd.UserID,
		StartDate: dosage.Truncate(cmd.StartDate),
		EndDate:   dosage.Truncate(cmd.EndDate),
		Medicines: medicines,
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating prescription: %w", err)
	}

	s.collector.PrescriptionsTotal.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: cmd.UserID, UserRole: "user",
		Action: "create", ResourceType: "prescription", ResourceID: p.ID.String(), IPAddress: ip,
	})

	return p, nil
}

func (s *PrescriptionService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*prescription.Prescription, error) {
	return s.repo.ListByUser(ctx, userID)
}

// DayView derives the calendar view for one date over the user's
// prescriptions. A negative lookahead override falls back to the configured
// window.
func (s *PrescriptionService) DayView(ctx context.Context, userID uuid.UUID, day time.Time, lookaheadOverride int) (prescription.DayView, error) {
	lookahead := s.lookaheadDays
	if lookaheadOverride >= 0 {
		lookahead = lookaheadOverride
	}

	ps, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return prescription.DayView{}, fmt.Errorf("listing prescriptions: %w", err)
	}

	s.collector.DayViewsTotal.Inc()
	return prescription.DeriveDayView(ps, day, lookahead), nil
}
