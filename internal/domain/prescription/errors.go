package prescription

import "errors"

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrInvalidDateRange     = errors.New("end date must be on or after start date")
	ErrNoMedicines          = errors.New("at least one medicine is required")
)
