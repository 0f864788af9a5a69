package response

import (
	"errors"
	"net/http"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/insurance"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/invoice"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/payroll"
	"github.com/brightpath-aba/billing-backend-go/internal/domain/timesheet"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Timesheet domain errors
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "Timesheet not found")
	case errors.Is(err, timesheet.ErrEntryAlreadyInvoiced):
		Conflict(w, "Timesheet entry is already invoiced")
	case errors.Is(err, timesheet.ErrInvalidEntryTimes):
		BadRequest(w, "Entry times are invalid", nil)
	case errors.Is(err, timesheet.ErrUnparseableEntryTime):
		BadRequest(w, "Entry time could not be parsed", nil)
	case errors.Is(err, timesheet.ErrMissingProviderClient):
		BadRequest(w, "Provider and client are required", nil)

	// Insurance domain errors
	case errors.Is(err, insurance.ErrInsuranceNotFound):
		NotFound(w, "Insurance not found")
	case errors.Is(err, insurance.ErrNoInsuranceAssigned):
		BadRequest(w, "Client has no insurance assigned", nil)
	case errors.Is(err, insurance.ErrNoRateConfigured):
		BadRequest(w, "Insurance has no usable rate configured", nil)
	case errors.Is(err, insurance.ErrInvalidRate):
		BadRequest(w, "Insurance rate must be positive", nil)
	case errors.Is(err, insurance.ErrInvalidUnitSize):
		BadRequest(w, "Billing unit size must be positive", nil)

	// Invoice domain errors
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		NotFound(w, "Invoice not found")
	case errors.Is(err, invoice.ErrInvoiceExistsForWeek):
		Conflict(w, "An invoice already exists for this client and week")
	case errors.Is(err, invoice.ErrNothingToInvoice):
		BadRequest(w, "No billable entries in the selected period", nil)
	case errors.Is(err, invoice.ErrInvalidPaymentAmount):
		BadRequest(w, "Payment amount must be positive", nil)
	case errors.Is(err, invoice.ErrZeroAdjustment):
		BadRequest(w, "Adjustment amount must be non-zero", nil)
	case errors.Is(err, invoice.ErrInvoiceNotDraft):
		Conflict(w, "Only draft invoices can be deleted")
	case errors.Is(err, invoice.ErrInvoiceDeleted):
		Conflict(w, "Invoice has been deleted")
	case errors.Is(err, invoice.ErrInvalidStatusChange):
		Conflict(w, "Invoice status does not allow this transition")
	case errors.Is(err, invoice.ErrMixedTimesheetKinds):
		BadRequest(w, "Regular and BCBA timesheets cannot share an invoice", nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrRunLineNotFound):
		NotFound(w, "Payroll run line not found")
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrNoImportRows):
		BadRequest(w, "No import rows matched the selection", nil)
	case errors.Is(err, payroll.ErrNoLinkedTimeData):
		BadRequest(w, "None of the selected rows link to an employee", nil)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Payroll period is invalid", nil)
	case errors.Is(err, payroll.ErrInvalidPayment):
		BadRequest(w, "Payment amount must be positive", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
