package calculation

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medimanage/api/internal/domain/dosage"
)

func sampleCalculation(ids ...uuid.UUID) *Calculation {
	c := &Calculation{
		UserID:   uuid.New(),
		FromDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ToDate:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		NumDays:  5,
	}
	for i, id := range ids {
		cost := float64(10 * (i + 1))
		c.LineItems = append(c.LineItems, dosage.LineResult{
			DoseSpec: dosage.DoseSpec{MedicineID: id},
			Quantity: 5,
			Cost:     cost,
		})
	}
	c.RecomputeFinalCost()
	return c
}

func TestFromProjection(t *testing.T) {
	userID := uuid.New()
	medID := uuid.New()
	p, err := dosage.Project(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		[]dosage.DoseSpec{{
			MedicineID:     medID,
			UnitPrice:      2,
			DoseSize:       1,
			FrequencyCount: 2,
			FrequencyUnit:  dosage.UnitDay,
		}},
	)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}

	c := FromProjection(userID, p)
	if c.UserID != userID {
		t.Errorf("UserID = %v, want %v", c.UserID, userID)
	}
	if c.NumDays != 5 || c.FinalCost != 20 {
		t.Errorf("NumDays = %d, FinalCost = %v, want 5 and 20", c.NumDays, c.FinalCost)
	}
	if len(c.LineItems) != 1 || c.LineItems[0].MedicineID != medID {
		t.Errorf("LineItems = %+v, want the projected line", c.LineItems)
	}
}

func TestAdjustLineItemOverwrite(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	c := sampleCalculation(a, b) // costs 10 and 20, final 30

	if !c.AdjustLineItem(a, 3, 6) {
		t.Fatal("adjusting an existing line should report a change")
	}
	if c.LineItems[0].Quantity != 3 || c.LineItems[0].Cost != 6 {
		t.Errorf("line not overwritten: %+v", c.LineItems[0])
	}
	if c.FinalCost != 26 {
		t.Errorf("FinalCost = %v, want 26", c.FinalCost)
	}
}

func TestAdjustLineItemZeroQuantityRemoves(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	c := sampleCalculation(a, b)

	if !c.AdjustLineItem(a, 0, 0) {
		t.Fatal("removing an existing line should report a change")
	}
	if len(c.LineItems) != 1 {
		t.Fatalf("got %d line items, want 1", len(c.LineItems))
	}
	if c.LineItems[0].MedicineID != b {
		t.Error("wrong line removed")
	}
	if c.FinalCost != 20 {
		t.Errorf("FinalCost = %v, want 20", c.FinalCost)
	}
}

func TestAdjustLineItemZeroQuantityUnknownMedicine(t *testing.T) {
	c := sampleCalculation(uuid.New())
	if c.AdjustLineItem(uuid.New(), 0, 0) {
		t.Error("removing an absent line should report no change")
	}
	if len(c.LineItems) != 1 {
		t.Errorf("got %d line items, want 1", len(c.LineItems))
	}
}

func TestAdjustLineItemAppendsUnknownMedicine(t *testing.T) {
	a := uuid.New()
	c := sampleCalculation(a) // cost 10
	newMed := uuid.New()

	if !c.AdjustLineItem(newMed, 2, 8) {
		t.Fatal("appending a new line should report a change")
	}
	if len(c.LineItems) != 2 {
		t.Fatalf("got %d line items, want 2", len(c.LineItems))
	}
	if c.LineItems[1].MedicineID != newMed {
		t.Errorf("appended line MedicineID = %v, want %v", c.LineItems[1].MedicineID, newMed)
	}
	if c.FinalCost != 18 {
		t.Errorf("FinalCost = %v, want 18", c.FinalCost)
	}
}

func TestAdjustLineItemRoundsInputs(t *testing.T) {
	a := uuid.New()
	c := sampleCalculation(a)

	c.AdjustLineItem(a, 1.2345, 9.8765)
	if c.LineItems[0].Quantity != 1.23 {
		t.Errorf("Quantity = %v, want 1.23", c.LineItems[0].Quantity)
	}
	if c.LineItems[0].Cost != 9.88 {
		t.Errorf("Cost = %v, want 9.88", c.LineItems[0].Cost)
	}
}

func TestRecomputeFinalCostEmpty(t *testing.T) {
	c := sampleCalculation(uuid.New())
	c.AdjustLineItem(c.LineItems[0].MedicineID, 0, 0)
	if c.FinalCost != 0 {
		t.Errorf("FinalCost = %v, want 0 after removing the only line", c.FinalCost)
	}
}
