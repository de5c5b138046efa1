package medicine

import "errors"

var (
	ErrMedicineNotFound      = errors.New("medicine not found")
	ErrMedicineAlreadyExists = errors.New("medicine already exists")
	ErrInvalidType           = errors.New("medicine type must be allopathy, ayurvedic or homeopathy")
	ErrInvalidSearchField    = errors.New("search field must be name, composition or manufacturer")
	ErrNoPrice               = errors.New("medicine has no usable price")
)
