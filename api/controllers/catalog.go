package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/minhnguyen-io/lenscraft-backend/api/middleware"
	"github.com/minhnguyen-io/lenscraft-backend/api/responses"
	"github.com/minhnguyen-io/lenscraft-backend/api/validators"
	"github.com/minhnguyen-io/lenscraft-backend/internal/catalog"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
)

type frameBody struct {
	Name      string          `json:"name" validate:"required,min=1,max=255"`
	Brand     *string         `json:"brand"`
	Material  *string         `json:"material"`
	Color     *string         `json:"color"`
	BasePrice decimal.Decimal `json:"base_price" validate:"required"`
	Status    string          `json:"status"`
}

type lensTypeBody struct {
	Name                 string           `json:"name" validate:"required,min=1,max=255"`
	Specification        string           `json:"specification"`
	ExtraPrice           *decimal.Decimal `json:"extra_price"`
	RequiresPrescription bool             `json:"requires_prescription"`
}

type lensFeatureBody struct {
	Name          string           `json:"name" validate:"required,min=1,max=255"`
	Specification string           `json:"specification"`
	LensIndex     *float64         `json:"lens_index"`
	ExtraPrice    *decimal.Decimal `json:"extra_price"`
}

type prescriptionBody struct {
	SphereLeft  *float64   `json:"sphere_left"`
	SphereRight *float64   `json:"sphere_right"`
	CylLeft     *float64   `json:"cyl_left"`
	CylRight    *float64   `json:"cyl_right"`
	PDmm        *float64   `json:"pd_mm"`
	Notes       *string    `json:"notes"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func (b frameBody) toInput() catalog.FrameInput {
	return catalog.FrameInput{
		Name:      b.Name,
		Brand:     b.Brand,
		Material:  b.Material,
		Color:     b.Color,
		BasePrice: b.BasePrice,
		Status:    b.Status,
	}
}

func (b lensTypeBody) toInput() catalog.LensTypeInput {
	return catalog.LensTypeInput{
		Name:                 b.Name,
		Specification:        b.Specification,
		ExtraPrice:           b.ExtraPrice,
		RequiresPrescription: b.RequiresPrescription,
	}
}

func (b lensFeatureBody) toInput() catalog.LensFeatureInput {
	return catalog.LensFeatureInput{
		Name:          b.Name,
		Specification: b.Specification,
		LensIndex:     b.LensIndex,
		ExtraPrice:    b.ExtraPrice,
	}
}

func ListFrames(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListFrames(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func CreateFrame(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body frameBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		frame, err := svc.CreateFrame(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, frame)
	}
}

func UpdateFrame(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frameID, err := validators.ParsePathUUID(chi.URLParam(r, "frameId"), "frameId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body frameBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		frame, err := svc.UpdateFrame(r.Context(), frameID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, frame)
	}
}

func DeleteFrame(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frameID, err := validators.ParsePathUUID(chi.URLParam(r, "frameId"), "frameId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteFrame(r.Context(), frameID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func ListLensTypes(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListLensTypes(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func CreateLensType(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body lensTypeBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lensType, err := svc.CreateLensType(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lensType)
	}
}

func UpdateLensType(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lensTypeID, err := validators.ParsePathUUID(chi.URLParam(r, "lensTypeId"), "lensTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body lensTypeBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lensType, err := svc.UpdateLensType(r.Context(), lensTypeID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lensType)
	}
}

func DeleteLensType(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lensTypeID, err := validators.ParsePathUUID(chi.URLParam(r, "lensTypeId"), "lensTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteLensType(r.Context(), lensTypeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func ListLensFeatures(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListLensFeatures(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func CreateLensFeature(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body lensFeatureBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		feature, err := svc.CreateLensFeature(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, feature)
	}
}

func UpdateLensFeature(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		featureID, err := validators.ParsePathUUID(chi.URLParam(r, "lensFeatureId"), "lensFeatureId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body lensFeatureBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		feature, err := svc.UpdateLensFeature(r.Context(), featureID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, feature)
	}
}

func DeleteLensFeature(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		featureID, err := validators.ParsePathUUID(chi.URLParam(r, "lensFeatureId"), "lensFeatureId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteLensFeature(r.Context(), featureID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func CreatePrescription(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body prescriptionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		prescription, err := svc.CreatePrescription(r.Context(), catalog.PrescriptionInput{
			UserID:      middleware.UserIDFromContext(r.Context()),
			SphereLeft:  body.SphereLeft,
			SphereRight: body.SphereRight,
			CylLeft:     body.CylLeft,
			CylRight:    body.CylRight,
			PDmm:        body.PDmm,
			Notes:       body.Notes,
			ExpiresAt:   body.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, prescription)
	}
}

func ListMyPrescriptions(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListPrescriptions(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
