package dosage

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type FrequencyUnit string

const (
	UnitDay   FrequencyUnit = "DAY"
	UnitWeek  FrequencyUnit = "WEEK"
	UnitMonth FrequencyUnit = "MONTH"
)

func (u FrequencyUnit) IsValid() bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth:
		return true
	}
	return false
}

type Weekday string

const (
	Monday    Weekday = "MON"
	Tuesday   Weekday = "TUE"
	Wednesday Weekday = "WED"
	Thursday  Weekday = "THU"
	Friday    Weekday = "FRI"
	Saturday  Weekday = "SAT"
	Sunday    Weekday = "SUN"
)

func (w Weekday) IsValid() bool {
	switch w {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// DoseSpec is one medicine's dosing and pricing parameters within a
// calculation or prescription. Exactly one of WeeklyDays/MonthlyDates is
// relevant, selected by FrequencyUnit; the other stays empty.
type DoseSpec struct {
	MedicineID     uuid.UUID     `json:"medicine_id"`
	UnitPrice      float64       `json:"unit_price"`
	DoseSize       float64       `json:"dose_size"`
	FrequencyCount int           `json:"frequency_count"`
	FrequencyUnit  FrequencyUnit `json:"frequency_unit"`
	WeeklyDays     []Weekday     `json:"weekly_days,omitempty"`
	MonthlyDates   []int         `json:"monthly_dates,omitempty"`
}

// SetFrequencyUnit switches the unit and clears whichever sub-schedule set no
// longer applies.
func (d *DoseSpec) SetFrequencyUnit(unit FrequencyUnit) {
	d.FrequencyUnit = unit
	if unit != UnitWeek {
		d.WeeklyDays = nil
	}
	if unit != UnitMonth {
		d.MonthlyDates = nil
	}
}

// AddWeeklyDay adds a weekday to the WEEK sub-schedule. Additions beyond
// FrequencyCount entries, duplicates, invalid codes and additions under a
// non-WEEK unit are silently ignored; the set never exceeds FrequencyCount.
// Returns whether the day was added.
func (d *DoseSpec) AddWeeklyDay(day Weekday) bool {
	if d.FrequencyUnit != UnitWeek || !day.IsValid() {
		return false
	}
	for _, existing := range d.WeeklyDays {
		if existing == day {
			return false
		}
	}
	if len(d.WeeklyDays) >= d.FrequencyCount {
		return false
	}
	d.WeeklyDays = append(d.WeeklyDays, day)
	return true
}

// RemoveWeeklyDay drops a weekday from the sub-schedule if present.
func (d *DoseSpec) RemoveWeeklyDay(day Weekday) {
	for i, existing := range d.WeeklyDays {
		if existing == day {
			d.WeeklyDays = append(d.WeeklyDays[:i], d.WeeklyDays[i+1:]...)
			return
		}
	}
}

// AddMonthlyDate adds a day-of-month to the MONTH sub-schedule under the same
// soft-clamp rules as AddWeeklyDay. Dates outside [1,31] are ignored.
func (d *DoseSpec) AddMonthlyDate(date int) bool {
	if d.FrequencyUnit != UnitMonth || date < 1 || date > 31 {
		return false
	}
	for _, existing := range d.MonthlyDates {
		if existing == date {
			return false
		}
	}
	if len(d.MonthlyDates) >= d.FrequencyCount {
		return false
	}
	d.MonthlyDates = append(d.MonthlyDates, date)
	return true
}

// RemoveMonthlyDate drops a day-of-month from the sub-schedule if present.
func (d *DoseSpec) RemoveMonthlyDate(date int) {
	for i, existing := range d.MonthlyDates {
		if existing == date {
			d.MonthlyDates = append(d.MonthlyDates[:i], d.MonthlyDates[i+1:]...)
			return
		}
	}
}

// Normalize converts a "count times per unit" frequency into a per-day rate.
// A month is treated as a fixed 30 days; existing stored records were computed
// with this approximation, so it must not become calendar-aware.
func Normalize(count int, unit FrequencyUnit) float64 {
	switch unit {
	case UnitWeek:
		return float64(count) / 7
	case UnitMonth:
		return float64(count) / 30
	default:
		return float64(count)
	}
}

// NumDays counts the days in [from, to] inclusive of both endpoints, at day
// granularity. NumDays(d, d) == 1.
func NumDays(from, to time.Time) int {
	return int(math.Floor(Truncate(to).Sub(Truncate(from)).Hours()/24)) + 1
}

// Truncate strips the time-of-day so date comparisons are free of
// timezone/hour artifacts.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Round2 rounds to two decimal places. Projection rounds at the point of
// output only, never mid-computation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
