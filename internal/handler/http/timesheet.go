package http

import (
	"encoding/json"
	"net/http"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/timesheet"
	"github.com/brightpath-aba/billing-backend-go/internal/handler/http/response"
)

type TimesheetHandler interface {
	ValidateOverlaps(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	overlapService timesheet.OverlapService
}

func NewTimesheetHandler(overlapService timesheet.OverlapService) TimesheetHandler {
	return &timesheetHandlerImpl{overlapService: overlapService}
}

func (h *timesheetHandlerImpl) ValidateOverlaps(w http.ResponseWriter, r *http.Request) {
	var req timesheet.CheckOverlapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.overlapService.CheckEntries(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
