package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medimanage/api/internal/domain/dosage"
	"github.com/medimanage/api/internal/service"
)

type CalculationHandler struct {
	calcSvc *service.CalculationService
}

func NewCalculationHandler(calcSvc *service.CalculationService) *CalculationHandler {
	return &CalculationHandler{calcSvc: calcSvc}
}

type doseSpecRequest struct {
	MedicineID     string   `json:"medicine_id" binding:"required"`
	UnitPrice      float64  `json:"unit_price"`
	DoseSize       float64  `json:"dose_size"`
	FrequencyCount int      `json:"frequency_count"`
	FrequencyUnit  string   `json:"frequency_unit" binding:"required"`
	WeeklyDays     []string `json:"weekly_days"`
	MonthlyDates   []int    `json:"monthly_dates"`
}

type calculateRequest struct {
	FromDate  string            `json:"from_date" binding:"required"`
	ToDate    string            `json:"to_date" binding:"required"`
	Medicines []doseSpecRequest `json:"medicines" binding:"required"`
}

// Calculate handles PUT /calculations: project and replace the caller's
// single live calculation.
func (h *CalculationHandler) Calculate(c *gin.Context) {
	var req calculateRequest
	if !bindJSON(c, &req) {
		return
	}

	from, err := parseDate(req.FromDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid from_date: must be an ISO-8601 date")
		return
	}
	to, err := parseDate(req.ToDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid to_date: must be an ISO-8601 date")
		return
	}

	items := make([]dosage.DoseSpec, 0, len(req.Medicines))
	for _, m := range req.Medicines {
		medicineID, err := parseUUIDString(m.MedicineID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid medicine_id: "+m.MedicineID)
			return
		}

		days := make([]dosage.Weekday, 0, len(m.WeeklyDays))
		for _, d := range m.WeeklyDays {
			days = append(days, dosage.Weekday(d))
		}

		items = append(items, dosage.DoseSpec{
			MedicineID:     medicineID,
			UnitPrice:      m.UnitPrice,
			DoseSize:       m.DoseSize,
			FrequencyCount: m.FrequencyCount,
			FrequencyUnit:  dosage.FrequencyUnit(m.FrequencyUnit),
			WeeklyDays:     days,
			MonthlyDates:   m.MonthlyDates,
		})
	}

	claims := currentClaims(c)
	calc, err := h.calcSvc.Calculate(c.Request.Context(), claims.UserID, from, to, items, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, calc)
}

// Fetch handles GET /calculations: the caller's live calculation with
// catalog details joined in.
func (h *CalculationHandler) Fetch(c *gin.Context) {
	claims := currentClaims(c)
	calc, details, err := h.calcSvc.Fetch(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"calculation": calc,
		"details":     details,
	})
}

type adjustLineItemRequest struct {
	MedicineID string  `json:"medicine_id" binding:"required"`
	Quantity   float64 `json:"quantity"`
	Cost       float64 `json:"cost"`
}

// AdjustLineItem handles PATCH /calculations/items. Quantity zero removes
// the medicine from the live calculation.
func (h *CalculationHandler) AdjustLineItem(c *gin.Context) {
	var req adjustLineItemRequest
	if !bindJSON(c, &req) {
		return
	}

	medicineID, err := uuid.Parse(req.MedicineID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid medicine_id: must be a valid UUID")
		return
	}

	claims := currentClaims(c)
	calc, err := h.calcSvc.AdjustLineItem(c.Request.Context(), claims.UserID, medicineID, req.Quantity, req.Cost, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, calc)
}
