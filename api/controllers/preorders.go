package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minhnguyen-io/lenscraft-backend/api/middleware"
	"github.com/minhnguyen-io/lenscraft-backend/api/responses"
	"github.com/minhnguyen-io/lenscraft-backend/api/validators"
	internalpreorders "github.com/minhnguyen-io/lenscraft-backend/internal/preorders"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
)

type createPreorderBody struct {
	ExpectedDate *time.Time     `json:"expected_date"`
	Items        []lineItemBody `json:"items" validate:"required,min=1,dive"`
}

type updatePreorderStatusBody struct {
	Status string `json:"status" validate:"required"`
}

type convertPreorderBody struct {
	ShippingAddress string `json:"shipping_address" validate:"required,min=1,max=512"`
}

func CreatePreorder(svc *internalpreorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createPreorderBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := parseItems(body.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preorder, err := svc.Create(r.Context(), internalpreorders.CreatePreorderInput{
			UserID:       middleware.UserIDFromContext(r.Context()),
			ExpectedDate: body.ExpectedDate,
			Items:        items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, preorder)
	}
}

func PreorderDetail(svc *internalpreorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		preorderID, err := validators.ParsePathUUID(chi.URLParam(r, "preorderId"), "preorderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, _ := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
		preorder, err := svc.Get(r.Context(), preorderID, middleware.UserIDFromContext(r.Context()), role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preorder)
	}
}

// ListPreorders scopes the result by caller the same way ListOrders does.
func ListPreorders(svc *internalpreorders.Service, logg *logger.Logger) http.HandlerFunc {
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

func UpdatePreorderStatus(svc *internalpreorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		preorderID, err := validators.ParsePathUUID(chi.URLParam(r, "preorderId"), "preorderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updatePreorderStatusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preorder, err := svc.UpdateStatus(r.Context(), internalpreorders.UpdateStatusInput{
			PreorderID: preorderID,
			Status:     body.Status,
			Role:       middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preorder)
	}
}

func CancelPreorder(svc *internalpreorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		preorderID, err := validators.ParsePathUUID(chi.URLParam(r, "preorderId"), "preorderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), preorderID, middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func ConvertPreorder(svc *internalpreorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		preorderID, err := validators.ParsePathUUID(chi.URLParam(r, "preorderId"), "preorderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body convertPreorderBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConvertToOrder(r.Context(), internalpreorders.ConvertInput{
			PreorderID:      preorderID,
			ShippingAddress: body.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
