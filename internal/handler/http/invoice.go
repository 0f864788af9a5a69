package http

import (
	"encoding/json"
	"net/http"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/invoice"
	"github.com/brightpath-aba/billing-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type InvoiceHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Send(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	RecordPayment(w http.ResponseWriter, r *http.Request)
	RecordAdjustment(w http.ResponseWriter, r *http.Request)
}

type invoiceHandlerImpl struct {
	invoiceService invoice.InvoiceService
}

func NewInvoiceHandler(invoiceService invoice.InvoiceService) InvoiceHandler {
	return &invoiceHandlerImpl{invoiceService: invoiceService}
}

func (h *invoiceHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req invoice.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.invoiceService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invoice generation completed", result)
}

func (h *invoiceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Invoice ID is required", nil)
		return
	}

	result, err := h.invoiceService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

type actorRequest struct {
	ActorID *string `json:"actor_id,omitempty"`
}

// decodeActor tolerates an empty body; actor attribution is optional.
func decodeActor(r *http.Request) *string {
	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil
	}
	return req.ActorID
}

func (h *invoiceHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Invoice ID is required", nil)
		return
	}

	result, err := h.invoiceService.Approve(r.Context(), id, decodeActor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invoice approved", result)
}

func (h *invoiceHandlerImpl) Send(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Invoice ID is required", nil)
		return
	}

	result, err := h.invoiceService.MarkSent(r.Context(), id, decodeActor(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invoice marked as sent", result)
}

func (h *invoiceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Invoice ID is required", nil)
		return
	}

	if err := h.invoiceService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invoice deleted", nil)
}

func (h *invoiceHandlerImpl) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Invoice ID is required", nil)
		return
	}

	var req invoice.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.InvoiceID = id

	result, err := h.invoiceService.RecordPayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment recorded", result)
}

func (h *invoiceHandlerImpl) RecordAdjustment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Invoice ID is required", nil)
		return
	}

	var req invoice.RecordAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.InvoiceID = id

	result, err := h.invoiceService.RecordAdjustment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Adjustment recorded", result)
}
