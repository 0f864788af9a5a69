package timesheet

import "errors"

var (
	ErrTimesheetNotFound     = errors.New("timesheet not found")
	ErrEntryAlreadyInvoiced  = errors.New("timesheet entry is already invoiced")
	ErrInvalidEntryTimes     = errors.New("entry end time must be after start time")
	ErrUnparseableEntryTime  = errors.New("entry time could not be parsed")
	ErrMissingProviderClient = errors.New("provider id and client id are required")
)
