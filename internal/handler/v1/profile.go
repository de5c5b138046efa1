package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medimanage/api/internal/service"
)

type ProfileHandler struct {
	profileSvc *service.ProfileService
}

func NewProfileHandler(profileSvc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	claims := currentClaims(c)
	user, err := h.profileSvc.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"phone":     user.Phone,
		"allergies": user.Allergies,
		"favorites": user.Favorites,
	})
}

type updatePhoneRequest struct {
	Phone string `json:"phone" binding:"required"`
}

func (h *ProfileHandler) UpdatePhone(c *gin.Context) {
	var req updatePhoneRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := currentClaims(c)
	user, err := h.profileSvc.UpdatePhone(c.Request.Context(), claims.UserID, req.Phone, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"phone": user.Phone,
	})
}

func (h *ProfileHandler) ListAllergies(c *gin.Context) {
	claims := currentClaims(c)
	allergies, err := h.profileSvc.ListAllergies(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"allergies": allergies})
}

type allergyRequest struct {
	Allergy string `json:"allergy" binding:"required"`
}

func (h *ProfileHandler) AddAllergy(c *gin.Context) {
	var req allergyRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := currentClaims(c)
	allergies, err := h.profileSvc.AddAllergy(c.Request.Context(), claims.UserID, req.Allergy)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, gin.H{"allergies": allergies})
}

func (h *ProfileHandler) RemoveAllergy(c *gin.Context) {
	var req allergyRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := currentClaims(c)
	allergies, err := h.profileSvc.RemoveAllergy(c.Request.Context(), claims.UserID, req.Allergy)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"allergies": allergies})
}

type replaceAllergiesRequest struct {
	Allergies []string `json:"allergies" binding:"required"`
}

func (h *ProfileHandler) ReplaceAllergies(c *gin.Context) {
	var req replaceAllergiesRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := currentClaims(c)
	allergies, err := h.profileSvc.ReplaceAllergies(c.Request.Context(), claims.UserID, req.Allergies)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"allergies": allergies})
}

type toggleFavoriteRequest struct {
	MedicineID string `json:"medicine_id" binding:"required,uuid"`
}

func (h *ProfileHandler) ToggleFavorite(c *gin.Context) {
	var req toggleFavoriteRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := currentClaims(c)
	medicineID, err := parseUUIDString(req.MedicineID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid medicine_id: must be a valid UUID")
		return
	}

	favorites, favorited, err := h.profileSvc.ToggleFavorite(c.Request.Context(), claims.UserID, medicineID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "medicine removed from favorites"
	if favorited {
		message = "medicine added to favorites"
	}
	c.JSON(http.StatusOK, APIResponse[any]{
		Data:    gin.H{"favorites": favorites},
		Message: message,
	})
}
