package handler

import (
	"net/http"

	"github.com/ampplex/influencerflow/internal/service"
)

type PaymentHandler struct {
	Service *service.PaymentService
}

// Verify is called by the checkout page after Razorpay redirects back.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var in service.VerifyPaymentInput
	if err := DecodeJSON(w, r, &in); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}

	if err := h.Service.Verify(r.Context(), in); err != nil {
		status := StatusFor(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, status, map[string]any{"success": false, "error": msg})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
