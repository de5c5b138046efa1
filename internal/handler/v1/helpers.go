package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medimanage/api/internal/domain/calculation"
	"github.com/medimanage/api/internal/domain/dosage"
	"github.com/medimanage/api/internal/domain/medicine"
	"github.com/medimanage/api/internal/domain/prescription"
	gormrepo "github.com/medimanage/api/internal/repository/gorm"
	"github.com/medimanage/api/internal/service"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

// FieldErrorResponse carries projector violations with their line-item
// indexes so the caller can pin each failure to a specific input.
type FieldErrorResponse struct {
	Error      string              `json:"error"`
	Violations []dosage.FieldError `json:"violations"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	var projErr *dosage.ValidationError
	if errors.As(err, &projErr) {
		c.JSON(http.StatusBadRequest, FieldErrorResponse{
			Error:      "validation failed",
			Violations: projErr.Violations,
		})
		return
	}

	switch {
	case errors.Is(err, gormrepo.ErrUserNotFound),
		errors.Is(err, medicine.ErrMedicineNotFound),
		errors.Is(err, calculation.ErrCalculationNotFound),
		errors.Is(err, prescription.ErrPrescriptionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, medicine.ErrMedicineAlreadyExists),
		errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, medicine.ErrInvalidType),
		errors.Is(err, medicine.ErrInvalidSearchField),
		errors.Is(err, medicine.ErrNoPrice),
		errors.Is(err, prescription.ErrInvalidDateRange),
		errors.Is(err, prescription.ErrNoMedicines),
		errors.Is(err, service.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDString(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}

// parseDate accepts an ISO-8601 date, with or without a time component.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return v
		}
	}
	return defaultVal
}
