package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/medimanage/api/internal/domain/medicine"
	"github.com/medimanage/api/internal/service"
)

type MedicineHandler struct {
	medicineSvc *service.MedicineService
}

func NewMedicineHandler(medicineSvc *service.MedicineService) *MedicineHandler {
	return &MedicineHandler{medicineSvc: medicineSvc}
}

type medicineResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Manufacturer      string  `json:"manufacturer"`
	Type              string  `json:"type"`
	PriceRupees       string  `json:"price_rupees"`
	UnitPrice         float64 `json:"unit_price,omitempty"`
	PackSizeLabel     string  `json:"pack_size_label"`
	ShortComposition1 string  `json:"short_composition1"`
	ShortComposition2 string  `json:"short_composition2,omitempty"`
	IsDiscontinued    bool    `json:"is_discontinued"`
}

func toMedicineResponse(m *medicine.Medicine) medicineResponse {
	resp := medicineResponse{
		ID:                m.ID.String(),
		Name:              m.Name,
		Manufacturer:      m.Manufacturer,
		Type:              string(m.Type),
		PriceRupees:       m.PriceRupees,
		PackSizeLabel:     m.PackSizeLabel,
		ShortComposition1: m.ShortComposition1,
		ShortComposition2: m.ShortComposition2,
		IsDiscontinued:    m.IsDiscontinued,
	}
	if unitPrice, ok := m.UnitPrice(); ok {
		resp.UnitPrice = unitPrice
	}
	return resp
}

// Search handles GET /medicines?term=&type=name|composition|manufacturer.
func (h *MedicineHandler) Search(c *gin.Context) {
	term := c.Query("term")
	field := medicine.SearchField(c.DefaultQuery("type", string(medicine.SearchByName)))

	meds, err := h.medicineSvc.Search(c.Request.Context(), term, field)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]medicineResponse, 0, len(meds))
	for _, m := range meds {
		out = append(out, toMedicineResponse(m))
	}
	respondOK(c, out)
}

func (h *MedicineHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	m, err := h.medicineSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toMedicineResponse(m))
}

type createMedicineRequest struct {
	Name              string `json:"name" binding:"required"`
	Manufacturer      string `json:"manufacturer" binding:"required"`
	Type              string `json:"type" binding:"required"`
	PriceRupees       string `json:"price_rupees"`
	PackSizeLabel     string `json:"pack_size_label" binding:"required"`
	ShortComposition1 string `json:"short_composition1" binding:"required"`
	ShortComposition2 string `json:"short_composition2"`
	IsDiscontinued    bool   `json:"is_discontinued"`
}

func (h *MedicineHandler) Create(c *gin.Context) {
	var req createMedicineRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := currentClaims(c)
	m, err := h.medicineSvc.Create(c.Request.Context(), &medicine.CreateMedicineCommand{
		Name:              req.Name,
		Manufacturer:      req.Manufacturer,
		Type:              medicine.Type(req.Type),
		PriceRupees:       req.PriceRupees,
		PackSizeLabel:     req.PackSizeLabel,
		ShortComposition1: req.ShortComposition1,
		ShortComposition2: req.ShortComposition2,
		IsDiscontinued:    req.IsDiscontinued,
	}, claims.UserID, claims.Role, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, toMedicineResponse(m))
}

// CheckAllergies handles GET /medicines/:id/allergy-check against the
// caller's allergy profile.
func (h *MedicineHandler) CheckAllergies(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := currentClaims(c)
	conflicts, err := h.medicineSvc.CheckAllergies(c.Request.Context(), claims.UserID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"has_conflicts": len(conflicts) > 0,
		"conflicts":     conflicts,
	})
}
