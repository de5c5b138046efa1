package medicine

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeAllopathy  Type = "allopathy"
	TypeAyurvedic  Type = "ayurvedic"
	TypeHomeopathy Type = "homeopathy"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeAllopathy, TypeAyurvedic, TypeHomeopathy:
		return true
	}
	return false
}

// SearchField selects which catalog column a search term matches against.
type SearchField string

const (
	SearchByName         SearchField = "name"
	SearchByComposition  SearchField = "composition"
	SearchByManufacturer SearchField = "manufacturer"
)

func (f SearchField) IsValid() bool {
	switch f {
	case SearchByName, SearchByComposition, SearchByManufacturer:
		return true
	}
	return false
}

// Medicine is one catalog entry. The price is kept as the catalog source's
// raw text; parsing into a number is an explicit step, not a column type.
type Medicine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name              string `gorm:"column:name;type:varchar(255);uniqueIndex;not null"`
	Manufacturer      string `gorm:"column:manufacturer;type:varchar(255);not null;index"`
	Type              Type   `gorm:"column:type;type:varchar(20);not null"`
	PriceRupees       string `gorm:"column:price_rupees;type:varchar(50)"`
	PackSizeLabel     string `gorm:"column:pack_size_label;type:varchar(100);not null"`
	ShortComposition1 string `gorm:"column:short_composition1;type:varchar(255);not null"`
	ShortComposition2 string `gorm:"column:short_composition2;type:varchar(255)"`
	IsDiscontinued    bool   `gorm:"column:is_discontinued;default:false"`
}

func (Medicine) TableName() string {
	return "catalog.medicines"
}

var packSizePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(ml|tablet|capsule|strip)`)

// ParsePackSize extracts the base-unit count from a pack size label such as
// "strip of 10 tablets" or "bottle of 100 ml". Labels that do not mention a
// recognized unit fall back to a pack of 1.
func ParsePackSize(label string) float64 {
	m := packSizePattern.FindStringSubmatch(label)
	if m == nil {
		return 1
	}
	qty, err := strconv.ParseFloat(m[1], 64)
	if err != nil || qty <= 0 {
		return 1
	}
	return qty
}

// Price parses the raw catalog price text. The second return is false when
// the entry carries no usable price.
func (m *Medicine) Price() (float64, bool) {
	s := strings.TrimSpace(m.PriceRupees)
	if s == "" {
		return 0, false
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || p < 0 {
		return 0, false
	}
	return p, true
}

// UnitPrice derives the per-base-unit price: the pack price divided by the
// parsed pack size ("10 tablets" for ₹20 → ₹2 per tablet).
func (m *Medicine) UnitPrice() (float64, bool) {
	price, ok := m.Price()
	if !ok {
		return 0, false
	}
	return price / ParsePackSize(m.PackSizeLabel), true
}

// MatchesAllergy reports whether an allergy term appears in either
// composition field, case-insensitively.
func (m *Medicine) MatchesAllergy(allergy string) bool {
	term := strings.ToLower(strings.TrimSpace(allergy))
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(m.ShortComposition1), term) ||
		strings.Contains(strings.ToLower(m.ShortComposition2), term)
}

type CreateMedicineCommand struct {
	Name              string
	Manufacturer      string
	Type              Type
	PriceRupees       string
	PackSizeLabel     string
	ShortComposition1 string
	ShortComposition2 string
	IsDiscontinued    bool
}

// SearchQuery is a catalog search: a case-insensitive substring match on one
// field, capped at Limit results. An empty term lists the first Limit entries.
type SearchQuery struct {
	Term  string
	Field SearchField
	Limit int
}
