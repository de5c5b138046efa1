package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medimanage/api/internal/domain"
	"github.com/medimanage/api/internal/domain/calculation"
	"github.com/medimanage/api/internal/domain/medicine"
	"github.com/medimanage/api/internal/domain/prescription"
	"github.com/medimanage/api/pkg/metrics"
)

// Prometheus collectors register globally, so one instance is shared across
// the whole test binary.
var testCollector = metrics.NewCollector("servicetest")

type fakeAuditRepo struct {
	entries []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func newTestAudit() *AuditService {
	return NewAuditService(&fakeAuditRepo{}, testCollector, zap.NewNop())
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
}

var errFakeNotFound = errors.New("not found")

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, errFakeNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) UpdateLoginAttempt(_ context.Context, id uuid.UUID, success bool) error {
	u, ok := r.users[id]
	if !ok {
		return errFakeNotFound
	}
	if success {
		u.FailedLoginCount = 0
		u.LockedUntil = nil
		now := time.Now()
		u.LastLoginAt = &now
	} else {
		u.FailedLoginCount++
	}
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return errFakeNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return errFakeNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeMedicineRepo struct {
	medicines map[uuid.UUID]*medicine.Medicine
}

func newFakeMedicineRepo() *fakeMedicineRepo {
	return &fakeMedicineRepo{medicines: map[uuid.UUID]*medicine.Medicine{}}
}

func (r *fakeMedicineRepo) Create(_ context.Context, m *medicine.Medicine) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.medicines[m.ID] = m
	return nil
}

func (r *fakeMedicineRepo) GetByID(_ context.Context, id uuid.UUID) (*medicine.Medicine, error) {
	m, ok := r.medicines[id]
	if !ok {
		return nil, medicine.ErrMedicineNotFound
	}
	return m, nil
}

func (r *fakeMedicineRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*medicine.Medicine, error) {
	var out []*medicine.Medicine
	for _, id := range ids {
		if m, ok := r.medicines[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMedicineRepo) GetByName(_ context.Context, name string) (*medicine.Medicine, error) {
	for _, m := range r.medicines {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return nil, medicine.ErrMedicineNotFound
}

func (r *fakeMedicineRepo) Search(_ context.Context, q *medicine.SearchQuery) ([]*medicine.Medicine, error) {
	term := strings.ToLower(q.Term)
	var out []*medicine.Medicine
	for _, m := range r.medicines {
		var haystack string
		switch q.Field {
		case medicine.SearchByComposition:
			haystack = m.ShortComposition1 + " " + m.ShortComposition2
		case medicine.SearchByManufacturer:
			haystack = m.Manufacturer
		default:
			haystack = m.Name
		}
		if strings.Contains(strings.ToLower(haystack), term) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

type fakeCalculationRepo struct {
	byUser map[uuid.UUID]*calculation.Calculation
}

func newFakeCalculationRepo() *fakeCalculationRepo {
	return &fakeCalculationRepo{byUser: map[uuid.UUID]*calculation.Calculation{}}
}

func (r *fakeCalculationRepo) ReplaceForUser(_ context.Context, c *calculation.Calculation) error {
	if existing, ok := r.byUser[c.UserID]; ok {
		c.ID = existing.ID
	} else if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.byUser[c.UserID] = c
	return nil
}

func (r *fakeCalculationRepo) GetByUser(_ context.Context, userID uuid.UUID) (*calculation.Calculation, error) {
	c, ok := r.byUser[userID]
	if !ok {
		return nil, calculation.ErrCalculationNotFound
	}
	return c, nil
}

func (r *fakeCalculationRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	delete(r.byUser, userID)
	return nil
}

type fakePrescriptionRepo struct {
	prescriptions []*prescription.Prescription
}

func (r *fakePrescriptionRepo) Create(_ context.Context, p *prescription.Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.prescriptions = append(r.prescriptions, p)
	return nil
}

func (r *fakePrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	for _, p := range r.prescriptions {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, prescription.ErrPrescriptionNotFound
}

func (r *fakePrescriptionRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*prescription.Prescription, error) {
	var out []*prescription.Prescription
	for _, p := range r.prescriptions {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePrescriptionRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	kept := r.prescriptions[:0]
	for _, p := range r.prescriptions {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	r.prescriptions = kept
	return nil
}
