package dosage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FieldError pins a precondition violation to a specific field, and to a line
// item index when the field belongs to one (-1 otherwise).
type FieldError struct {
	Field     string `json:"field"`
	ItemIndex int    `json:"item_index"`
	Reason    string `json:"reason"`
}

func (e FieldError) Error() string {
	if e.ItemIndex >= 0 {
		return fmt.Sprintf("%s (item %d): %s", e.Field, e.ItemIndex, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationError aggregates every precondition violation found in one
// projection request; nothing is silently coerced.
type ValidationError struct {
	Violations []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid projection input: " + e.Violations[0].Error()
	}
	return fmt.Sprintf("invalid projection input: %d violations, first: %s",
		len(e.Violations), e.Violations[0].Error())
}

// LineResult is one projected line item: the input spec plus its computed
// totals, already rounded for both persistence and display.
type LineResult struct {
	DoseSpec
	Quantity float64 `json:"quantity"`
	Cost     float64 `json:"cost"`
}

// Projection is the full output of a cost/quantity projection over a date
// range.
type Projection struct {
	FromDate  time.Time    `json:"from_date"`
	ToDate    time.Time    `json:"to_date"`
	NumDays   int          `json:"num_days"`
	LineItems []LineResult `json:"line_items"`
	FinalCost float64      `json:"final_cost"`
}

// Project computes total units consumed and total cost for each line item
// over [from, to] inclusive. Monetary and quantity outputs are rounded to two
// decimals at output only, so intermediate arithmetic carries full precision.
func Project(from, to time.Time, items []DoseSpec) (*Projection, error) {
	if err := validateProjection(from, to, items); err != nil {
		return nil, err
	}

	days := NumDays(from, to)
	results := make([]LineResult, 0, len(items))
	var finalCost float64

	for _, item := range items {
		totalDoses := Normalize(item.FrequencyCount, item.FrequencyUnit) * float64(days)
		quantity := item.DoseSize * totalDoses
		cost := item.UnitPrice * quantity
		finalCost += cost

		results = append(results, LineResult{
			DoseSpec: item,
			Quantity: Round2(quantity),
			Cost:     Round2(cost),
		})
	}

	return &Projection{
		FromDate:  Truncate(from),
		ToDate:    Truncate(to),
		NumDays:   days,
		LineItems: results,
		FinalCost: Round2(finalCost),
	}, nil
}

func validateProjection(from, to time.Time, items []DoseSpec) error {
	var violations []FieldError

	if Truncate(to).Before(Truncate(from)) {
		violations = append(violations, FieldError{
			Field: "to_date", ItemIndex: -1,
			Reason: "end date must be on or after start date",
		})
	}

	if len(items) == 0 {
		violations = append(violations, FieldError{
			Field: "line_items", ItemIndex: -1,
			Reason: "at least one medicine is required",
		})
	}

	for i, item := range items {
		if item.MedicineID == uuid.Nil {
			violations = append(violations, FieldError{
				Field: "medicine_id", ItemIndex: i, Reason: "must be a valid medicine reference",
			})
		}
		if item.UnitPrice <= 0 {
			violations = append(violations, FieldError{
				Field: "unit_price", ItemIndex: i, Reason: "must be positive",
			})
		}
		if item.DoseSize <= 0 {
			violations = append(violations, FieldError{
				Field: "dose_size", ItemIndex: i, Reason: "must be positive",
			})
		}
		if item.FrequencyCount <= 0 {
			violations = append(violations, FieldError{
				Field: "frequency_count", ItemIndex: i, Reason: "must be positive",
			})
		}
		if !item.FrequencyUnit.IsValid() {
			violations = append(violations, FieldError{
				Field: "frequency_unit", ItemIndex: i, Reason: "must be one of DAY, WEEK, MONTH",
			})
		}
		if len(item.WeeklyDays) > 0 && item.FrequencyUnit != UnitWeek {
			violations = append(violations, FieldError{
				Field: "weekly_days", ItemIndex: i, Reason: "only allowed when frequency unit is WEEK",
			})
		}
		if len(item.MonthlyDates) > 0 && item.FrequencyUnit != UnitMonth {
			violations = append(violations, FieldError{
				Field: "monthly_dates", ItemIndex: i, Reason: "only allowed when frequency unit is MONTH",
			})
		}
		if item.FrequencyCount > 0 && len(item.WeeklyDays) > item.FrequencyCount {
			violations = append(violations, FieldError{
				Field: "weekly_days", ItemIndex: i, Reason: "cannot select more days than the frequency count",
			})
		}
		if item.FrequencyCount > 0 && len(item.MonthlyDates) > item.FrequencyCount {
			violations = append(violations, FieldError{
				Field: "monthly_dates", ItemIndex: i, Reason: "cannot select more dates than the frequency count",
			})
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
