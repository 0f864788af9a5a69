package payroll

import "errors"

var (
	ErrRunNotFound      = errors.New("payroll run not found")
	ErrRunLineNotFound  = errors.New("payroll run line not found")
	ErrNoImportRows     = errors.New("no import rows selected")
	ErrNoLinkedTimeData = errors.New("no selected row is linked to an employee")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidPeriod    = errors.New("period end must not be before period start")
	ErrInvalidPayment   = errors.New("payment amount must be positive")
)
