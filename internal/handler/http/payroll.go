package http

import (
	"encoding/json"
	"net/http"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/payroll"
	"github.com/brightpath-aba/billing-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	CreateRun(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	RecordLinePayment(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	runService payroll.RunService
}

func NewPayrollHandler(runService payroll.RunService) PayrollHandler {
	return &payrollHandlerImpl{runService: runService}
}

func (h *payrollHandlerImpl) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.BuildRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.runService.BuildRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll run created", result)
}

func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.runService.GetRun(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) RecordLinePayment(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")
	if lineID == "" {
		response.BadRequest(w, "Line ID is required", nil)
		return
	}

	var req payroll.LinePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.LineID = lineID

	result, err := h.runService.RecordLinePayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Line payment recorded", result)
}
