package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medimanage/api/internal/domain/calculation"
	"github.com/medimanage/api/internal/domain/dosage"
	"github.com/medimanage/api/internal/domain/medicine"
)

func newCalculationService(calcRepo *fakeCalculationRepo, medRepo *fakeMedicineRepo) *CalculationService {
	return NewCalculationService(calcRepo, medRepo, testCollector, newTestAudit(), zap.NewNop())
}

func testDay(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func testItems(medID uuid.UUID) []dosage.DoseSpec {
	return []dosage.DoseSpec{{
		MedicineID:     medID,
		UnitPrice:      2,
		DoseSize:       1,
		FrequencyCount: 2,
		FrequencyUnit:  dosage.UnitDay,
	}}
}

func TestCalculateStoresProjection(t *testing.T) {
	calcRepo := newFakeCalculationRepo()
	svc := newCalculationService(calcRepo, newFakeMedicineRepo())
	userID := uuid.New()

	calc, err := svc.Calculate(context.Background(), userID, testDay(1), testDay(5), testItems(uuid.New()), "127.0.0.1")
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if calc.NumDays != 5 || calc.FinalCost != 20 {
		t.Errorf("NumDays = %d, FinalCost = %v, want 5 and 20", calc.NumDays, calc.FinalCost)
	}

	stored, err := calcRepo.GetByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("stored calculation missing: %v", err)
	}
	if stored.FinalCost != 20 {
		t.Errorf("stored FinalCost = %v, want 20", stored.FinalCost)
	}
}

func TestCalculateReplacesPrevious(t *testing.T) {
	calcRepo := newFakeCalculationRepo()
	svc := newCalculationService(calcRepo, newFakeMedicineRepo())
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.Calculate(ctx, userID, testDay(1), testDay(5), testItems(uuid.New()), ""); err != nil {
		t.Fatalf("first Calculate() error: %v", err)
	}
	second, err := svc.Calculate(ctx, userID, testDay(1), testDay(10), testItems(uuid.New()), "")
	if err != nil {
		t.Fatalf("second Calculate() error: %v", err)
	}

	if len(calcRepo.byUser) != 1 {
		t.Fatalf("got %d stored calculations, want 1", len(calcRepo.byUser))
	}
	stored, _ := calcRepo.GetByUser(ctx, userID)
	if stored.NumDays != second.NumDays {
		t.Errorf("stored NumDays = %d, want the replacement's %d", stored.NumDays, second.NumDays)
	}
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	svc := newCalculationService(newFakeCalculationRepo(), newFakeMedicineRepo())

	_, err := svc.Calculate(context.Background(), uuid.New(), testDay(5), testDay(1), testItems(uuid.New()), "")
	var verr *dosage.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v (%T), want *dosage.ValidationError", err, err)
	}
}

func TestFetchJoinsCatalogDetails(t *testing.T) {
	calcRepo := newFakeCalculationRepo()
	medRepo := newFakeMedicineRepo()
	svc := newCalculationService(calcRepo, medRepo)
	ctx := context.Background()
	userID := uuid.New()

	known := &medicine.Medicine{Name: "Amoxil 500", PackSizeLabel: "strip of 10 tablets"}
	if err := medRepo.Create(ctx, known); err != nil {
		t.Fatal(err)
	}
	vanished := uuid.New()

	items := append(testItems(known.ID), testItems(vanished)...)
	if _, err := svc.Calculate(ctx, userID, testDay(1), testDay(5), items, ""); err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}

	calc, details, err := svc.Fetch(ctx, userID)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(details) != len(calc.LineItems) {
		t.Fatalf("got %d details for %d line items", len(details), len(calc.LineItems))
	}
	if details[0].Medicine == nil || details[0].Medicine.Name != "Amoxil 500" {
		t.Errorf("known medicine not resolved: %+v", details[0])
	}
	if details[1].Medicine != nil {
		t.Errorf("vanished medicine should have nil details, got %+v", details[1].Medicine)
	}
}

func TestFetchNoCalculation(t *testing.T) {
	svc := newCalculationService(newFakeCalculationRepo(), newFakeMedicineRepo())
	_, _, err := svc.Fetch(context.Background(), uuid.New())
	if !errors.Is(err, calculation.ErrCalculationNotFound) {
		t.Errorf("err = %v, want ErrCalculationNotFound", err)
	}
}

func TestAdjustLineItemPersists(t *testing.T) {
	calcRepo := newFakeCalculationRepo()
	svc := newCalculationService(calcRepo, newFakeMedicineRepo())
	ctx := context.Background()
	userID := uuid.New()
	medID := uuid.New()

	if _, err := svc.Calculate(ctx, userID, testDay(1), testDay(5), testItems(medID), ""); err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}

	calc, err := svc.AdjustLineItem(ctx, userID, medID, 4, 8, "")
	if err != nil {
		t.Fatalf("AdjustLineItem() error: %v", err)
	}
	if calc.LineItems[0].Quantity != 4 || calc.FinalCost != 8 {
		t.Errorf("adjusted line = %+v, FinalCost = %v, want quantity 4 and cost 8", calc.LineItems[0], calc.FinalCost)
	}

	stored, _ := calcRepo.GetByUser(ctx, userID)
	if stored.FinalCost != 8 {
		t.Errorf("stored FinalCost = %v, want 8", stored.FinalCost)
	}
}

func TestAdjustLineItemNegativeRejected(t *testing.T) {
	svc := newCalculationService(newFakeCalculationRepo(), newFakeMedicineRepo())

	_, err := svc.AdjustLineItem(context.Background(), uuid.New(), uuid.New(), -1, 5, "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("err = %v (%T), want *ValidationError", err, err)
	}
}
