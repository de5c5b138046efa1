package calculation

import (
	"time"

	"github.com/google/uuid"

	"github.com/medimanage/api/internal/domain/dosage"
)

// Calculation is the single live cost projection for a user. A new successful
// calculation replaces the previous one wholesale; only the timestamps
// distinguish a replay of the same input.
type Calculation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	FromDate  time.Time           `gorm:"column:from_date;not null"`
	ToDate    time.Time           `gorm:"column:to_date;not null"`
	NumDays   int                 `gorm:"column:num_days;not null"`
	LineItems []dosage.LineResult `gorm:"column:line_items;serializer:json"`
	FinalCost float64             `gorm:"column:final_cost;not null"`
}

func (Calculation) TableName() string {
	return "ledger.calculations"
}

// FromProjection binds a projection result to its owner for persistence. The
// stored values are exactly the rounded projection outputs.
func FromProjection(userID uuid.UUID, p *dosage.Projection) *Calculation {
	return &Calculation{
		UserID:    userID,
		FromDate:  p.FromDate,
		ToDate:    p.ToDate,
		NumDays:   p.NumDays,
		LineItems: p.LineItems,
		FinalCost: p.FinalCost,
	}
}

// RecomputeFinalCost re-sums line costs after a line-item adjustment.
func (c *Calculation) RecomputeFinalCost() {
	var total float64
	for _, item := range c.LineItems {
		total += item.Cost
	}
	c.FinalCost = dosage.Round2(total)
}

// AdjustLineItem applies a single line-item edit: quantity zero removes the
// medicine, an existing line is overwritten, an unknown medicine is appended.
// Returns whether anything changed.
func (c *Calculation) AdjustLineItem(medicineID uuid.UUID, quantity, cost float64) bool {
	if quantity == 0 {
		for i, item := range c.LineItems {
			if item.MedicineID == medicineID {
				c.LineItems = append(c.LineItems[:i], c.LineItems[i+1:]...)
				c.RecomputeFinalCost()
				return true
			}
		}
		return false
	}

	for i := range c.LineItems {
		if c.LineItems[i].MedicineID == medicineID {
			c.LineItems[i].Quantity = dosage.Round2(quantity)
			c.LineItems[i].Cost = dosage.Round2(cost)
			c.RecomputeFinalCost()
			return true
		}
	}

	c.LineItems = append(c.LineItems, dosage.LineResult{
		DoseSpec: dosage.DoseSpec{MedicineID: medicineID},
		Quantity: dosage.Round2(quantity),
		Cost:     dosage.Round2(cost),
	})
	c.RecomputeFinalCost()
	return true
}
