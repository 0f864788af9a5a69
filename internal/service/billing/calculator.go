package billing

import (
	"github.com/brightpath-aba/billing-backend-go/internal/domain/insurance"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/timesheet"
	"github.com/shopspring/decimal"
)

// Calculator converts worked minutes into billable units and money. Pure;
// all I/O stays with the callers.
type Calculator struct {
	// DefaultUnitMinutes is the final fallback when a payer record carries
	// no unit size at all.
	DefaultUnitMinutes int
}

func NewCalculator(defaultUnitMinutes int) *Calculator {
	return &Calculator{DefaultUnitMinutes: defaultUnitMinutes}
}

// ResolveRate picks the rate/unit-size pair for a timesheet kind. BCBA
// timesheets use the BCBA pair, falling back to the regular pair, falling
// back to the legacy single rate, in that order. A missing or non-positive
// resolved rate is an error, never a guessed default.
func (c *Calculator) ResolveRate(ins insurance.Insurance, kind timesheet.Kind) (decimal.Decimal, int, error) {
	var rate *decimal.Decimal
	var unit *int

	if kind == timesheet.KindBCBA {
		rate = ins.BCBARate
		unit = ins.BCBAUnitMinutes
	}
	if rate == nil {
		rate = ins.RegularRate
		unit = ins.RegularUnitMinutes
	}
	if rate == nil {
		rate = ins.Rate
		unit = nil
	}

	if rate == nil {
		return decimal.Zero, 0, insurance.ErrNoRateConfigured
	}
	if !rate.IsPositive() {
		return decimal.Zero, 0, insurance.ErrInvalidRate
	}

	unitMinutes := c.DefaultUnitMinutes
	if unit != nil {
		unitMinutes = *unit
	}
	if unitMinutes <= 0 {
		return decimal.Zero, 0, insurance.ErrInvalidUnitSize
	}

	return *rate, unitMinutes, nil
}

// Units converts minutes to whole billable units, rounding up. A partial
// unit always bills as a full one.
func (c *Calculator) Units(minutes, unitMinutes int) int64 {
	if minutes <= 0 || unitMinutes <= 0 {
		return 0
	}
	return int64((minutes + unitMinutes - 1) / unitMinutes)
}

// Bill prices one entry. Supervision entries on regular timesheets bill
// zero; the units are still reported for the record. BCBA timesheets bill
// supervision like any other entry.
func (c *Calculator) Bill(minutes int, entryType timesheet.EntryType, rate decimal.Decimal, unitMinutes int, kind timesheet.Kind) (int64, decimal.Decimal) {
	units := c.Units(minutes, unitMinutes)

	if kind == timesheet.KindRegular && entryType == timesheet.EntryTypeSupervision {
		return units, decimal.Zero
	}

	return units, decimal.NewFromInt(units).Mul(rate)
}
