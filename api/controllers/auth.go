package controllers

import (
	"net/http"

	"github.com/minhnguyen-io/lenscraft-backend/api/responses"
	"github.com/minhnguyen-io/lenscraft-backend/api/validators"
	internalauth "github.com/minhnguyen-io/lenscraft-backend/internal/auth"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
)

type registerBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	FullName string `json:"full_name" validate:"required,min=1,max=128"`
}

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Register(svc *internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body registerBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), internalauth.RegisterInput{
			Email:    body.Email,
			Password: body.Password,
			FullName: body.FullName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		})
	}
}

func Login(svc *internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), internalauth.LoginInput{
			Email:    body.Email,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"access_token": result.AccessToken,
			"expires_at":   result.ExpiresAt,
			"user": map[string]any{
				"id":        result.User.ID,
				"email":     result.User.Email,
				"full_name": result.User.FullName,
				"role":      result.User.Role,
			},
		})
	}
}
