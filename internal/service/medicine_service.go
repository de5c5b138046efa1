package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medimanage/api/internal/domain"
	"github.com/medimanage/api/internal/domain/medicine"
	"github.com/medimanage/api/pkg/metrics"
)

type MedicineService struct {
	repo        medicine.Repository
	userRepo    UserRepository
	collector   *metrics.Collector
	auditSvc    *AuditService
	log         *zap.Logger
	searchLimit int
}

func NewMedicineService(repo medicine.Repository, userRepo UserRepository, collector *metrics.Collector, auditSvc *AuditService, log *zap.Logger, searchLimit int) *MedicineService {
	return &MedicineService{
		repo:        repo,
		userRepo:    userRepo,
		collector:   collector,
		auditSvc:    auditSvc,
		log:         log,
		searchLimit: searchLimit,
	}
}

// Search runs a case-insensitive substring search over one catalog field,
// capped at the configured limit.
func (s *MedicineService) Search(ctx context.Context, term string, field medicine.SearchField) ([]*medicine.Medicine, error) {
	if field == "" {
		field = medicine.SearchByName
	}
	if !field.IsValid() {
		return nil, medicine.ErrInvalidSearchField
	}

	meds, err := s.repo.Search(ctx, &medicine.SearchQuery{
		Term:  term,
		Field: field,
		Limit: s.searchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}

	s.collector.CatalogSearchesTotal.WithLabelValues(string(field)).Inc()
	return meds, nil
}

func (s *MedicineService) Get(ctx context.Context, id uuid.UUID) (*medicine.Medicine, error) {
	return s.repo.GetByID(ctx, id)
}

// Only admins can register catalog entries.
func (s *MedicineService) Create(ctx context.Context, cmd *medicine.CreateMedicineCommand, callerID uuid.UUID, callerRole domain.Role, ip string) (*medicine.Medicine, error) {
	if callerRole != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	var fields []string
	if cmd.Name == "" {
		fields = append(fields, "name is required")
	}
	if cmd.Manufacturer == "" {
		fields = append(fields, "manufacturer is required")
	}
	if cmd.ShortComposition1 == "" {
		fields = append(fields, "short_composition1 is required")
	}
	if cmd.PackSizeLabel == "" {
		fields = append(fields, "pack_size_label is required")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if !cmd.Type.IsValid() {
		return nil, medicine.ErrInvalidType
	}

	if _, err := s.repo.GetByName(ctx, cmd.Name); err == nil {
		return nil, medicine.ErrMedicineAlreadyExists
	}

	m := &medicine.Medicine{
		Name:              cmd.Name,
		Manufacturer:      cmd.Manufacturer,
		Type:              cmd.Type,
		PriceRupees:       cmd.PriceRupees,
		PackSizeLabel:     cmd.PackSizeLabel,
		ShortComposition1: cmd.ShortComposition1,
		ShortComposition2: cmd.ShortComposition2,
		IsDiscontinued:    cmd.IsDiscontinued,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("creating medicine: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: string(callerRole),
		Action: "create", ResourceType: "medicine", ResourceID: m.ID.String(), IPAddress: ip,
	})

	return m, nil
}

// AllergyConflict describes an allergy term found in a medicine's
// composition.
type AllergyConflict struct {
	Allergy string `json:"allergy"`
}

// CheckAllergies matches the caller's allergy terms against the medicine's
// composition text, case-insensitively.
func (s *MedicineService) CheckAllergies(ctx context.Context, userID, medicineID uuid.UUID) ([]AllergyConflict, error) {
	m, err := s.repo.GetByID(ctx, medicineID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var conflicts []AllergyConflict
	for _, allergy := range user.Allergies {
		if m.MatchesAllergy(allergy) {
			conflicts = append(conflicts, AllergyConflict{Allergy: allergy})
		}
	}
	return conflicts, nil
}
