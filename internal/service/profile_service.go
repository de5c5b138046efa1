package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medimanage/api/internal/domain"
	"github.com/medimanage/api/internal/domain/medicine"
)

// ProfileService manages the health-profile side of an account: phone number,
// the allergy list and catalog favorites.
type ProfileService struct {
	userRepo     UserRepository
	medicineRepo medicine.Repository
	auditSvc     *AuditService
	log          *zap.Logger
}

func NewProfileService(userRepo UserRepository, medicineRepo medicine.Repository, auditSvc *AuditService, log *zap.Logger) *ProfileService {
	return &ProfileService{userRepo: userRepo, medicineRepo: medicineRepo, auditSvc: auditSvc, log: log}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *ProfileService) UpdatePhone(ctx context.Context, userID uuid.UUID, phone string, ip string) (*domain.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, &ValidationError{Fields: []string{"phone is required"}}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Phone = phone
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating phone: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: userID, UserRole: string(user.Role),
		Action: "update", ResourceType: "user", ResourceID: userID.String(), IPAddress: ip,
		Changes: `{"field":"phone"}`,
	})

	return user, nil
}

func (s *ProfileService) ListAllergies(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Allergies, nil
}

// AddAllergy set-adds a trimmed allergy term; blank terms are rejected,
// duplicates are a no-op.
func (s *ProfileService) AddAllergy(ctx context.Context, userID uuid.UUID, allergy string) ([]string, error) {
	if strings.TrimSpace(allergy) == "" {
		return nil, &ValidationError{Fields: []string{"allergy cannot be empty"}}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.AddAllergy(allergy) {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("adding allergy: %w", err)
		}
	}
	return user.Allergies, nil
}

func (s *ProfileService) RemoveAllergy(ctx context.Context, userID uuid.UUID, allergy string) ([]string, error) {
	if strings.TrimSpace(allergy) == "" {
		return nil, &ValidationError{Fields: []string{"allergy cannot be empty"}}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.RemoveAllergy(allergy) {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("removing allergy: %w", err)
		}
	}
	return user.Allergies, nil
}

// ReplaceAllergies swaps the whole list. Entries are trimmed and blanks
// dropped before storage.
func (s *ProfileService) ReplaceAllergies(ctx context.Context, userID uuid.UUID, allergies []string) ([]string, error) {
	cleaned := make([]string, 0, len(allergies))
	for _, a := range allergies {
		if t := strings.TrimSpace(a); t != "" {
			cleaned = append(cleaned, t)
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Allergies = cleaned
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("replacing allergies: %w", err)
	}
	return user.Allergies, nil
}

// ToggleFavorite flips a medicine in or out of the user's favorites. The
// medicine must exist in the catalog. Returns the updated favorites and
// whether the medicine is now favorited.
func (s *ProfileService) ToggleFavorite(ctx context.Context, userID, medicineID uuid.UUID) ([]uuid.UUID, bool, error) {
	if _, err := s.medicineRepo.GetByID(ctx, medicineID); err != nil {
		return nil, false, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	favorited := user.ToggleFavorite(medicineID)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, false, fmt.Errorf("updating favorites: %w", err)
	}
	return user.Favorites, favorited, nil
}
