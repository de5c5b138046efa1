package dosage

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validSpec() DoseSpec {
	return DoseSpec{
		MedicineID:     uuid.New(),
		UnitPrice:      2.00,
		DoseSize:       1,
		FrequencyCount: 2,
		FrequencyUnit:  UnitDay,
	}
}

func TestProjectDaily(t *testing.T) {
	// 1 unit per dose, twice daily, over 5 inclusive days at 2.00 per unit.
	p, err := Project(day(2024, 1, 1), day(2024, 1, 5), []DoseSpec{validSpec()})
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}

	if p.NumDays != 5 {
		t.Errorf("NumDays = %d, want 5", p.NumDays)
	}
	if len(p.LineItems) != 1 {
		t.Fatalf("got %d line items, want 1", len(p.LineItems))
	}
	if got := p.LineItems[0].Quantity; got != 10 {
		t.Errorf("Quantity = %v, want 10", got)
	}
	if got := p.LineItems[0].Cost; got != 20.00 {
		t.Errorf("Cost = %v, want 20.00", got)
	}
	if p.FinalCost != 20.00 {
		t.Errorf("FinalCost = %v, want 20.00", p.FinalCost)
	}
}

func TestProjectWeekly(t *testing.T) {
	// 3 doses per week over exactly 7 days consumes exactly 3 units.
	spec := DoseSpec{
		MedicineID:     uuid.New(),
		UnitPrice:      5.00,
		DoseSize:       1,
		FrequencyCount: 3,
		FrequencyUnit:  UnitWeek,
	}
	p, err := Project(day(2024, 1, 1), day(2024, 1, 7), []DoseSpec{spec})
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}

	if got := p.LineItems[0].Quantity; got != 3 {
		t.Errorf("Quantity = %v, want 3", got)
	}
	if got := p.LineItems[0].Cost; got != 15.00 {
		t.Errorf("Cost = %v, want 15.00", got)
	}
}

func TestProjectMonthlyUsesThirtyDays(t *testing.T) {
	// 30 doses per month over 30 days is one dose per day regardless of the
	// calendar month the range falls in.
	spec := DoseSpec{
		MedicineID:     uuid.New(),
		UnitPrice:      1.00,
		DoseSize:       2,
		FrequencyCount: 30,
		FrequencyUnit:  UnitMonth,
	}
	p, err := Project(day(2024, 2, 1), day(2024, 3, 1), []DoseSpec{spec})
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}

	if p.NumDays != 30 {
		t.Fatalf("NumDays = %d, want 30", p.NumDays)
	}
	if got := p.LineItems[0].Quantity; got != 60 {
		t.Errorf("Quantity = %v, want 60", got)
	}
}

func TestProjectSingleDay(t *testing.T) {
	p, err := Project(day(2024, 1, 1), day(2024, 1, 1), []DoseSpec{validSpec()})
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if p.NumDays != 1 {
		t.Errorf("NumDays = %d, want 1", p.NumDays)
	}
	if got := p.LineItems[0].Quantity; got != 2 {
		t.Errorf("Quantity = %v, want 2", got)
	}
}

func TestProjectMultipleItemsSumFinalCost(t *testing.T) {
	a := validSpec()                // 20.00 over 5 days
	b := validSpec()
	b.UnitPrice = 0.50
	b.FrequencyCount = 1           // 0.50 * 1 * 5 = 2.50
	p, err := Project(day(2024, 1, 1), day(2024, 1, 5), []DoseSpec{a, b})
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if p.FinalCost != 22.50 {
		t.Errorf("FinalCost = %v, want 22.50", p.FinalCost)
	}
}

func TestProjectRoundsAtOutputOnly(t *testing.T) {
	// 1/3 unit per dose once daily for one day: quantity rounds to 0.33 but
	// the cost is computed from the unrounded quantity.
	spec := DoseSpec{
		MedicineID:     uuid.New(),
		UnitPrice:      3.00,
		DoseSize:       1.0 / 3,
		FrequencyCount: 1,
		FrequencyUnit:  UnitDay,
	}
	p, err := Project(day(2024, 1, 1), day(2024, 1, 1), []DoseSpec{spec})
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if got := p.LineItems[0].Quantity; got != 0.33 {
		t.Errorf("Quantity = %v, want 0.33", got)
	}
	// 3.00 * (1/3) = 1.00 exactly; rounding the quantity first would give 0.99.
	if got := p.LineItems[0].Cost; got != 1.00 {
		t.Errorf("Cost = %v, want 1.00", got)
	}
}

func TestProjectIdempotent(t *testing.T) {
	items := []DoseSpec{validSpec()}
	first, err := Project(day(2024, 1, 1), day(2024, 1, 5), items)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	second, err := Project(day(2024, 1, 1), day(2024, 1, 5), items)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if first.FinalCost != second.FinalCost || first.NumDays != second.NumDays {
		t.Errorf("repeated projection diverged: %+v vs %+v", first, second)
	}
}

func TestProjectValidation(t *testing.T) {
	valid := validSpec()

	tests := []struct {
		name      string
		from, to  time.Time
		items     []DoseSpec
		wantField string
		wantIndex int
	}{
		{
			name: "end before start",
			from: day(2024, 1, 5), to: day(2024, 1, 1),
			items:     []DoseSpec{valid},
			wantField: "to_date", wantIndex: -1,
		},
		{
			name: "no items",
			from: day(2024, 1, 1), to: day(2024, 1, 5),
			items:     nil,
			wantField: "line_items", wantIndex: -1,
		},
		{
			name: "nil medicine id",
			from: day(2024, 1, 1), to: day(2024, 1, 5),
			items: []DoseSpec{{
				UnitPrice: 1, DoseSize: 1, FrequencyCount: 1, FrequencyUnit: UnitDay,
			}},
			wantField: "medicine_id", wantIndex: 0,
		},
		{
			name: "zero unit price",
			from: day(2024, 1, 1), to: day(2024, 1, 5),
			items: []DoseSpec{{
				MedicineID: uuid.New(), DoseSize: 1, FrequencyCount: 1, FrequencyUnit: UnitDay,
			}},
			wantField: "unit_price", wantIndex: 0,
		},
		{
			name: "negative dose size",
			from: day(2024, 1, 1), to: day(2024, 1, 5),
			items: []DoseSpec{{
				MedicineID: uuid.New(), UnitPrice: 1, DoseSize: -1, FrequencyCount: 1, FrequencyUnit: UnitDay,
			}},
			wantField: "dose_size", wantIndex: 0,
		},
		{
			name: "zero frequency count",
			from: day(2024, 1, 1), to: day(2024, 1, 5),
			items: []DoseSpec{{
				MedicineID: uuid.New(), UnitPrice: 1, DoseSize: 1, FrequencyUnit: UnitDay,
			}},
			wantField: "frequency_count", wantIndex: 0,
		},
		{
			name: "unknown frequency unit",
			from: day(2024, 1, 1), to: day(2024, 1, 5),
			items: []DoseSpec{{
				MedicineID: uuid.New(), UnitPrice: 1, DoseSize: 1, FrequencyCount: 1, FrequencyUnit: "FORTNIGHT",
			}},
			wantField: "frequency_unit", wantIndex: 0,
		},
		{
			name: "weekly days under day unit",
			from: day(2024, 1, 1), to: day(2024, 1, 5),
			items: []DoseSpec{{
				MedicineID: uuid.New(), UnitPrice: 1, DoseSize: 1, FrequencyCount: 1,
				FrequencyUnit: UnitDay, WeeklyDays: []Weekday{Monday},
			}},
			wantField: "weekly_days", wantIndex: 0,
		},
		{
			name: "monthly dates under week unit",
			from: day(2024, 1, 1), to: day(2024, 1, 5),
			items: []DoseSpec{{
				MedicineID: uuid.New(), UnitPrice: 1, DoseSize: 1, FrequencyCount: 1,
				FrequencyUnit: UnitWeek, MonthlyDates: []int{1},
			}},
			wantField: "monthly_dates", wantIndex: 0,
		},
		{
			name: "more weekly days than frequency count",
			from: day(2024, 1, 1), to: day(2024, 1, 5),
			items: []DoseSpec{{
				MedicineID: uuid.New(), UnitPrice: 1, DoseSize: 1, FrequencyCount: 2,
				FrequencyUnit: UnitWeek, WeeklyDays: []Weekday{Monday, Wednesday, Friday},
			}},
			wantField: "weekly_days", wantIndex: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Project(tt.from, tt.to, tt.items)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			found := false
			for _, v := range verr.Violations {
				if v.Field == tt.wantField && v.ItemIndex == tt.wantIndex {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("violations %+v missing field %q at index %d", verr.Violations, tt.wantField, tt.wantIndex)
			}
		})
	}
}

func TestProjectCollectsAllViolations(t *testing.T) {
	bad := DoseSpec{} // nil id, zero price, zero dose, zero count, empty unit
	_, err := Project(day(2024, 1, 5), day(2024, 1, 1), []DoseSpec{bad})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(verr.Violations) < 5 {
		t.Errorf("got %d violations, want at least 5: %+v", len(verr.Violations), verr.Violations)
	}
}
