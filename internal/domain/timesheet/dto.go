package timesheet

import (
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/clock"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/validator"
)

// ========== OVERLAP CHECK DTOs ==========

type CandidateEntry struct {
	Date      string `json:"date"`       // "2006-01-02"
	StartTime string `json:"start_time"` // "9:00 AM" or "09:00"
	EndTime   string `json:"end_time"`
	EntryType string `json:"entry_type,omitempty"`
}

type CheckOverlapRequest struct {
	ProviderID         string           `json:"provider_id"`
	ClientID           string           `json:"client_id"`
	ExcludeTimesheetID *string          `json:"exclude_timesheet_id,omitempty"`
	Entries            []CandidateEntry `json:"entries"`
}

func (r *CheckOverlapRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ProviderID) {
		errs = append(errs, validator.ValidationError{Field: "provider_id", Message: "is required"})
	}
	if validator.IsEmpty(r.ClientID) {
		errs = append(errs, validator.ValidationError{Field: "client_id", Message: "is required"})
	}
	if len(r.Entries) == 0 {
		errs = append(errs, validator.ValidationError{Field: "entries", Message: "at least one entry is required"})
	}

	for i, e := range r.Entries {
		field := "entries[" + validator.Itoa(i) + "]"
		if _, ok := validator.IsValidDate(e.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: field + ".date", Message: "must be a valid date (YYYY-MM-DD)"})
		}
		start := clock.ParseClock(e.StartTime)
		end := clock.ParseClock(e.EndTime)
		if start == clock.NoTime {
			errs = append(errs, validator.ValidationError{Field: field + ".start_time", Message: "could not be parsed"})
		}
		if end == clock.NoTime {
			errs = append(errs, validator.ValidationError{Field: field + ".end_time", Message: "could not be parsed"})
		}
		if start != clock.NoTime && end != clock.NoTime && end <= start {
			errs = append(errs, validator.ValidationError{Field: field + ".end_time", Message: "must be after start_time"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ConflictScope identifies which side of the schedule collided.
type ConflictScope string

const (
	// ScopeInternal - two candidate entries collide before anything persists.
	ScopeInternal ConflictScope = "internal"
	ScopeProvider ConflictScope = "provider"
	ScopeClient   ConflictScope = "client"
	ScopeBoth     ConflictScope = "both"
)

type ConflictingEntry struct {
	EntryID     string `json:"entry_id"`
	TimesheetID string `json:"timesheet_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	EntryType   string `json:"entry_type"`
}

type Conflict struct {
	Scope ConflictScope `json:"scope"`
	// EntryIndex is the position of the offending candidate in the request.
	EntryIndex int `json:"entry_index"`
	// OtherEntryIndex is set for internal conflicts (the second candidate).
	OtherEntryIndex *int `json:"other_entry_index,omitempty"`
	// Existing is set for provider/client/both conflicts.
	Existing *ConflictingEntry `json:"existing,omitempty"`
}

type CheckOverlapResponse struct {
	Conflicts []Conflict `json:"conflicts"`
}
