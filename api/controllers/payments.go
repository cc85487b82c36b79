package controllers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/minhnguyen-io/lenscraft-backend/api/middleware"
	"github.com/minhnguyen-io/lenscraft-backend/api/responses"
	"github.com/minhnguyen-io/lenscraft-backend/api/validators"
	internalpayments "github.com/minhnguyen-io/lenscraft-backend/internal/payments"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
)

type createPaymentBody struct {
	OrderID    *string `json:"order_id" validate:"omitempty,uuid"`
	PreorderID *string `json:"preorder_id" validate:"omitempty,uuid"`
	Method     string  `json:"method" validate:"required"`
}

func CreatePayment(svc *internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createPaymentBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalpayments.CreateInput{
			Method:   body.Method,
			CallerID: middleware.UserIDFromContext(r.Context()),
		}
		var err error
		if input.OrderID, err = parseOptionalUUID(body.OrderID, "order id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.PreorderID, err = parseOptionalUUID(body.PreorderID, "preorder id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

func PaymentDetail(svc *internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID, err := validators.ParsePathUUID(chi.URLParam(r, "paymentId"), "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Get(r.Context(), paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

func ListPayments(svc *internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// PaymentCheckout builds the hosted gateway URL the client should redirect
// the shopper to.
func PaymentCheckout(svc *internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID, err := validators.ParsePathUUID(chi.URLParam(r, "paymentId"), "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payURL, err := svc.BuildGatewayRedirect(r.Context(), internalpayments.RedirectInput{
			PaymentID: paymentID,
			ClientIP:  clientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"pay_url": payURL})
	}
}

// VNPayReturn handles the browser redirect back from the gateway. It is a
// best-effort confirmation; the IPN callback remains the source of truth.
func VNPayReturn(svc *internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payment, err := svc.HandleReturn(r.Context(), r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// VNPayIPN handles the server-to-server confirmation callback. The gateway
// retries on anything but HTTP 200 with its fixed response vocabulary, so
// the handler always answers 200 and encodes the outcome in the body.
func VNPayIPN(svc *internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := svc.HandleIPN(r.Context(), r.URL.Query())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logg.Error(r.Context(), "payment.ipn.write_response", err)
		}
	}
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
