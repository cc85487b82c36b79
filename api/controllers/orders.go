package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhnguyen-io/lenscraft-backend/api/middleware"
	"github.com/minhnguyen-io/lenscraft-backend/api/responses"
	"github.com/minhnguyen-io/lenscraft-backend/api/validators"
	internalorders "github.com/minhnguyen-io/lenscraft-backend/internal/orders"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
)

type createOrderBody struct {
	ShippingAddress string         `json:"shipping_address" validate:"required,min=1,max=512"`
	Items           []lineItemBody `json:"items" validate:"required,min=1,dive"`
}

type updateOrderStatusBody struct {
	Status string `json:"status" validate:"required"`
}

func CreateOrder(svc *internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createOrderBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := parseItems(body.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			UserID:          middleware.UserIDFromContext(r.Context()),
			ShippingAddress: body.ShippingAddress,
			Items:           items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrderDetail(svc *internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, _ := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
		order, err := svc.Get(r.Context(), orderID, middleware.UserIDFromContext(r.Context()), role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListOrders scopes the result by caller: backoffice roles see every order,
// customers only their own.
func ListOrders(svc *internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, _ := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
		var page any
		if role.IsBackoffice() {
			page, err = svc.ListAll(r.Context(), params)
		} else {
			page, err = svc.ListForUser(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func UpdateOrderStatus(svc *internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateOrderStatusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), internalorders.UpdateStatusInput{
			OrderID:  orderID,
			Status:   body.Status,
			CallerID: middleware.UserIDFromContext(r.Context()),
			Role:     middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
