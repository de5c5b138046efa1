package calculation

import "errors"

var ErrCalculationNotFound = errors.New("no calculation found for user")
