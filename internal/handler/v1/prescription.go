package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medimanage/api/internal/domain/dosage"
	"github.com/medimanage/api/internal/domain/prescription"
	"github.com/medimanage/api/internal/service"
)

type PrescriptionHandler struct {
	prescriptionSvc *service.PrescriptionService
}

func NewPrescriptionHandler(prescriptionSvc *service.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptionSvc: prescriptionSvc}
}

type prescriptionMedicineRequest struct {
	MedicineID     string   `json:"medicine_id" binding:"required"`
	MedicineName   string   `json:"medicine_name" binding:"required"`
	DoseSize       float64  `json:"dose_size"`
	FrequencyCount int      `json:"frequency_count"`
	FrequencyUnit  string   `json:"frequency_unit" binding:"required"`
	DoseTimes      []string `json:"dose_times"`
	WeeklyDays     []string `json:"weekly_days"`
	MonthlyDates   []int    `json:"monthly_dates"`
}

type createPrescriptionRequest struct {
	StartDate string                        `json:"start_date" binding:"required"`
	EndDate   string                        `json:"end_date" binding:"required"`
	Medicines []prescriptionMedicineRequest `json:"medicines" binding:"required"`
}

func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req createPrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid start_date: must be an ISO-8601 date")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid end_date: must be an ISO-8601 date")
		return
	}

	medicines := make([]prescription.Medicine, 0, len(req.Medicines))
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

		medicines = append(medicines, prescription.Medicine{
			MedicineID:     medicineID,
			MedicineName:   m.MedicineName,
			DoseSize:       m.DoseSize,
			FrequencyCount: m.FrequencyCount,
			FrequencyUnit:  dosage.FrequencyUnit(m.FrequencyUnit),
			DoseTimes:      m.DoseTimes,
			WeeklyDays:     days,
			MonthlyDates:   m.MonthlyDates,
		})
	}

	claims := currentClaims(c)
	p, err := h.prescriptionSvc.Create(c.Request.Context(), &prescription.CreatePrescriptionCommand{
		UserID:    claims.UserID,
		StartDate: start,
		EndDate:   end,
		Medicines: medicines,
	}, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, p)
}

func (h *PrescriptionHandler) List(c *gin.Context) {
	claims := currentClaims(c)
	ps, err := h.prescriptionSvc.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, ps)
}

// DayView handles GET /prescriptions/day/:date?lookahead=N for calendar
// rendering: which medicines are active that day and which are ending soon.
func (h *PrescriptionHandler) DayView(c *gin.Context) {
	day, err := parseDate(c.Param("date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date: must be an ISO-8601 date")
		return
	}

	lookahead := parseQueryInt(c, "lookahead", -1)

	claims := currentClaims(c)
	view, err := h.prescriptionSvc.DayView(c.Request.Context(), claims.UserID, day, lookahead)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}
