package prescription

import (
	"time"

	"github.com/google/uuid"

	"github.com/medimanage/api/internal/domain/dosage"
)

// Medicine is one medicine's entry within a prescription: the dosing spec plus
// a display name and optional literal dose times ("08:00", "20:00"). The
// weekly/monthly sub-schedule sets are informational annotations for display;
// they do not gate whether the prescription is active on a day.
type Medicine struct {
	MedicineID     uuid.UUID            `json:"medicine_id"`
	MedicineName   string               `json:"medicine_name"`
	DoseSize       float64              `json:"dose_size"`
	FrequencyCount int                  `json:"frequency_count"`
	FrequencyUnit  dosage.FrequencyUnit `json:"frequency_unit"`
	DoseTimes      []string             `json:"dose_times,omitempty"`
	WeeklyDays     []dosage.Weekday     `json:"weekly_days,omitempty"`
	MonthlyDates   []int                `json:"monthly_dates,omitempty"`
}

type Prescription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	StartDate time.Time  `gorm:"column:start_date;not null;index"`
	EndDate   time.Time  `gorm:"column:end_date;not null;index"`
	Medicines []Medicine `gorm:"column:medicines;serializer:json"`
	IsActive  bool       `gorm:"column:is_active;default:true"`
}

func (Prescription) TableName() string {
	return "ledger.prescriptions"
}

// DefaultLookaheadDays is the fallback "ending soon" window when no
// configuration override is supplied.
const DefaultLookaheadDays = 2

// Occurrence is the computed fact about how a prescription applies to one
// calendar date.
type Occurrence struct {
	ActiveToday  bool `json:"active_today"`
	EndingSoon   bool `json:"ending_soon"`
	DaysUntilEnd int  `json:"days_until_end"`
}

// OccursOn derives the occurrence of p on day. Dates are compared at day
// granularity. "Active" means the prescription's date range covers the day,
// inclusive of both endpoints, regardless of the weekly/monthly sub-schedule.
// DaysUntilEnd is negative when queried after the range end.
func (p *Prescription) OccursOn(day time.Time, lookaheadDays int) Occurrence {
	d := dosage.Truncate(day)
	start := dosage.Truncate(p.StartDate)
	end := dosage.Truncate(p.EndDate)

	daysUntilEnd := int(end.Sub(d).Hours() / 24)

	return Occurrence{
		ActiveToday:  !d.Before(start) && !d.After(end),
		EndingSoon:   daysUntilEnd >= 0 && daysUntilEnd <= lookaheadDays,
		DaysUntilEnd: daysUntilEnd,
	}
}

// EndingMedicine pairs a medicine with the days remaining until its
// prescription ends, for "ending soon" badges.
type EndingMedicine struct {
	Medicine Medicine `json:"medicine"`
	DaysLeft int      `json:"days_left"`
}

// DayView aggregates one calendar day across prescriptions: the union of
// medicines from every prescription active that day, and the union of
// medicines from prescriptions ending within the lookahead window.
type DayView struct {
	Date       time.Time        `json:"date"`
	Medicines  []Medicine       `json:"medicines"`
	EndingSoon []EndingMedicine `json:"ending_soon"`
}

// DeriveDayView answers "what is active or ending on this day" over a set of
// prescriptions. A negative lookaheadDays falls back to the default window.
func DeriveDayView(prescriptions []*Prescription, day time.Time, lookaheadDays int) DayView {
	if lookaheadDays < 0 {
		lookaheadDays = DefaultLookaheadDays
	}

	view := DayView{Date: dosage.Truncate(day)}
	for _, p := range prescriptions {
		occ := p.OccursOn(day, lookaheadDays)
		if occ.ActiveToday {
			view.Medicines = append(view.Medicines, p.Medicines...)
		}
		if occ.EndingSoon {
			for _, m := range p.Medicines {
				view.EndingSoon = append(view.EndingSoon, EndingMedicine{
					Medicine: m,
					DaysLeft: occ.DaysUntilEnd,
				})
			}
		}
	}
	return view
}

type CreatePrescriptionCommand struct {
	UserID    uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Medicines []Medicine
}
