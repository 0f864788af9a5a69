package insurance

import "errors"

var (
	ErrInsuranceNotFound   = errors.New("insurance record not found")
	ErrNoInsuranceAssigned = errors.New("client has no insurance assigned")
	ErrNoRateConfigured    = errors.New("insurance has no usable rate configured")
	ErrInvalidRate         = errors.New("insurance rate must be positive")
	ErrInvalidUnitSize     = errors.New("billing unit size must be positive")
)
