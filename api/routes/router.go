package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minhnguyen-io/lenscraft-backend/api/controllers"
	"github.com/minhnguyen-io/lenscraft-backend/api/middleware"
	internalauth "github.com/minhnguyen-io/lenscraft-backend/internal/auth"
	"github.com/minhnguyen-io/lenscraft-backend/internal/catalog"
	"github.com/minhnguyen-io/lenscraft-backend/internal/orders"
	"github.com/minhnguyen-io/lenscraft-backend/internal/payments"
	"github.com/minhnguyen-io/lenscraft-backend/internal/preorders"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/config"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth      *internalauth.Service
	Catalog   *catalog.Service
	Orders    *orders.Service
	Preorders *preorders.Service
	Payments  *payments.Service
	Sessions  middleware.SessionChecker
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.Register(svcs.Auth, logg))
			r.Post("/login", controllers.Login(svcs.Auth, logg))
		})

		// Gateway callbacks authenticate with their own signature, not a session.
		r.Route("/payments/vnpay", func(r chi.Router) {
			r.Get("/return", controllers.VNPayReturn(svcs.Payments, logg))
			r.Get("/ipn", controllers.VNPayIPN(svcs.Payments, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, svcs.Sessions, logg))

			backoffice := middleware.RequireBackoffice(logg)

			r.Route("/frames", func(r chi.Router) {
				r.Get("/", controllers.ListFrames(svcs.Catalog, logg))
				r.With(backoffice).Post("/", controllers.CreateFrame(svcs.Catalog, logg))
				r.With(backoffice).Patch("/{frameId}", controllers.UpdateFrame(svcs.Catalog, logg))
				r.With(backoffice).Delete("/{frameId}", controllers.DeleteFrame(svcs.Catalog, logg))
			})
			r.Route("/lens-types", func(r chi.Router) {
				r.Get("/", controllers.ListLensTypes(svcs.Catalog, logg))
				r.With(backoffice).Post("/", controllers.CreateLensType(svcs.Catalog, logg))
				r.With(backoffice).Patch("/{lensTypeId}", controllers.UpdateLensType(svcs.Catalog, logg))
				r.With(backoffice).Delete("/{lensTypeId}", controllers.DeleteLensType(svcs.Catalog, logg))
			})
			r.Route("/lens-features", func(r chi.Router) {
				r.Get("/", controllers.ListLensFeatures(svcs.Catalog, logg))
				r.With(backoffice).Post("/", controllers.CreateLensFeature(svcs.Catalog, logg))
				r.With(backoffice).Patch("/{lensFeatureId}", controllers.UpdateLensFeature(svcs.Catalog, logg))
				r.With(backoffice).Delete("/{lensFeatureId}", controllers.DeleteLensFeature(svcs.Catalog, logg))
			})

			r.Route("/prescriptions", func(r chi.Router) {
				r.Get("/", controllers.ListMyPrescriptions(svcs.Catalog, logg))
				r.Post("/", controllers.CreatePrescription(svcs.Catalog, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
				r.Get("/", controllers.ListOrders(svcs.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
				r.Patch("/{orderId}/status", controllers.UpdateOrderStatus(svcs.Orders, logg))
			})

			r.Route("/preorders", func(r chi.Router) {
				r.Post("/", controllers.CreatePreorder(svcs.Preorders, logg))
				r.Get("/", controllers.ListPreorders(svcs.Preorders, logg))
				r.Get("/{preorderId}", controllers.PreorderDetail(svcs.Preorders, logg))
				r.With(backoffice).Patch("/{preorderId}/status", controllers.UpdatePreorderStatus(svcs.Preorders, logg))
				r.Post("/{preorderId}/cancel", controllers.CancelPreorder(svcs.Preorders, logg))
				r.With(backoffice).Post("/{preorderId}/convert", controllers.ConvertPreorder(svcs.Preorders, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/", controllers.CreatePayment(svcs.Payments, logg))
				r.With(backoffice).Get("/", controllers.ListPayments(svcs.Payments, logg))
				r.Get("/{paymentId}", controllers.PaymentDetail(svcs.Payments, logg))
				r.Get("/{paymentId}/checkout", controllers.PaymentCheckout(svcs.Payments, logg))
			})
		})
	})

	return r
}
