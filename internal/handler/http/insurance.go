package http

import (
	"encoding/json"
	"net/http"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/insurance"
	"github.com/brightpath-aba/billing-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type InsuranceHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	UpdateRates(w http.ResponseWriter, r *http.Request)
	GetRateHistory(w http.ResponseWriter, r *http.Request)
}

type insuranceHandlerImpl struct {
	insuranceService insurance.InsuranceService
}

func NewInsuranceHandler(insuranceService insurance.InsuranceService) InsuranceHandler {
	return &insuranceHandlerImpl{insuranceService: insuranceService}
}

func (h *insuranceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Insurance ID is required", nil)
		return
	}

	result, err := h.insuranceService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *insuranceHandlerImpl) UpdateRates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Insurance ID is required", nil)
		return
	}

	var req insurance.UpdateRatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.InsuranceID = id

	result, err := h.insuranceService.UpdateRates(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Insurance rates updated", result)
}

func (h *insuranceHandlerImpl) GetRateHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Insurance ID is required", nil)
		return
	}

	result, err := h.insuranceService.GetRateHistory(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
