package overlap

import (
	"context"
	"fmt"
	"time"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/timesheet"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/clock"
)

type OverlapServiceImpl struct {
	timesheetRepo timesheet.TimesheetRepository
	loc           *time.Location
}

func NewOverlapService(timesheetRepo timesheet.TimesheetRepository, loc *time.Location) timesheet.OverlapService {
	return &OverlapServiceImpl{
		timesheetRepo: timesheetRepo,
		loc:           loc,
	}
}

type candidate struct {
	index  int
	dayKey string
	day    time.Time
	start  int
	end    int
}

// CheckEntries reports every scheduling conflict for a candidate
// submission: candidate-vs-candidate first, then candidate-vs-persisted for
// the same provider or client. Entries of the timesheet being edited are
// excluded from the persisted scan. Read-only.
func (s *OverlapServiceImpl) CheckEntries(ctx context.Context, req timesheet.CheckOverlapRequest) (timesheet.CheckOverlapResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.CheckOverlapResponse{}, err
	}

	candidates := make([]candidate, 0, len(req.Entries))
	for i, e := range req.Entries {
		day, err := time.ParseInLocation("2006-01-02", e.Date, s.loc)
		if err != nil {
			return timesheet.CheckOverlapResponse{}, fmt.Errorf("invalid entry date %q: %w", e.Date, err)
		}
		candidates = append(candidates, candidate{
			index:  i,
			dayKey: e.Date,
			day:    day,
			start:  clock.ParseClock(e.StartTime),
			end:    clock.ParseClock(e.EndTime),
		})
	}

	resp := timesheet.CheckOverlapResponse{Conflicts: []timesheet.Conflict{}}

	// Candidate entries colliding with each other, before anything persists.
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			if a.dayKey != b.dayKey {
				continue
			}
			if clock.Overlaps(a.start, a.end, b.start, b.end) {
				other := b.index
				resp.Conflicts = append(resp.Conflicts, timesheet.Conflict{
					Scope:           timesheet.ScopeInternal,
					EntryIndex:      a.index,
					OtherEntryIndex: &other,
				})
			}
		}
	}

	// Fetch persisted entries with a one-day margin on each side; stored
	// dates are UTC instants and can sit on the wrong side of a civil-day
	// boundary until re-normalized.
	from, to := candidates[0].day, candidates[0].day
	for _, c := range candidates[1:] {
		if c.day.Before(from) {
			from = c.day
		}
		if c.day.After(to) {
			to = c.day
		}
	}
	from = from.AddDate(0, 0, -1)
	to = to.AddDate(0, 0, 2)

	persisted, err := s.timesheetRepo.GetEntriesForConflictScan(ctx, req.ProviderID, req.ClientID, from, to, req.ExcludeTimesheetID)
	if err != nil {
		return timesheet.CheckOverlapResponse{}, fmt.Errorf("failed to scan persisted entries: %w", err)
	}

	for _, p := range persisted {
		pKey := clock.DayKey(p.Date, s.loc)
		for _, c := range candidates {
			if c.dayKey != pKey {
				continue
			}
			if !clock.Overlaps(c.start, c.end, p.StartMinutes, p.EndMinutes) {
				continue
			}

			scope := conflictScope(p, req.ProviderID, req.ClientID)
			existing := timesheet.ConflictingEntry{
				EntryID:     p.EntryID,
				TimesheetID: p.TimesheetID,
				Date:        pKey,
				StartTime:   clock.FormatClock(p.StartMinutes),
				EndTime:     clock.FormatClock(p.EndMinutes),
				EntryType:   string(p.EntryType),
			}
			resp.Conflicts = append(resp.Conflicts, timesheet.Conflict{
				Scope:      scope,
				EntryIndex: c.index,
				Existing:   &existing,
			})
		}
	}

	return resp, nil
}

func conflictScope(p timesheet.ConflictScanEntry, providerID, clientID string) timesheet.ConflictScope {
	providerMatch := p.ProviderID == providerID
	clientMatch := p.ClientID == clientID

	switch {
	case providerMatch && clientMatch:
		return timesheet.ScopeBoth
	case providerMatch:
		return timesheet.ScopeProvider
	default:
		return timesheet.ScopeClient
	}
}
