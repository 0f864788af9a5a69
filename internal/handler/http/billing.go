package http

import (
	"encoding/json"
	"net/http"

	"github.com/brightpath-aba/billing-backend-go/internal/domain/invoice"
	"github.com/brightpath-aba/billing-backend-go/internal/handler/http/response"
)

type BillingHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
}

type billingHandlerImpl struct {
	billingService invoice.BillingService
}

func NewBillingHandler(billingService invoice.BillingService) BillingHandler {
	return &billingHandlerImpl{billingService: billingService}
}

func (h *billingHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	var req invoice.BillPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.billingService.Preview(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
