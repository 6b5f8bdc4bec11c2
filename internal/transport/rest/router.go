package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/boostify/storefront/internal/affiliate"
	"github.com/boostify/storefront/internal/auth"
	"github.com/boostify/storefront/internal/catalog"
	"github.com/boostify/storefront/internal/notification"
	"github.com/boostify/storefront/internal/order"
	"github.com/boostify/storefront/internal/payment"
	"github.com/boostify/storefront/internal/rates"
	"github.com/boostify/storefront/internal/transport/middleware"
	"github.com/boostify/storefront/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	Catalog      *catalog.Handler
	Order        *order.Handler
	Payment      *payment.Handler
	Notification *notification.Handler
	Affiliate    *affiliate.Handler
	Rates        *rates.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, rbac *auth.RBACAuthorization, allowedOrigins, uploadDir string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORSWithOrigins(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Uploaded service images are public static files. Digital assets are
	// not mounted here; they only stream through the order download route.
	imageServer := http.StripPrefix("/uploads/image/", http.FileServer(http.Dir(filepath.Join(uploadDir, "image"))))
	router.Get("/uploads/image/*", func(w http.ResponseWriter, r *http.Request) {
		imageServer.ServeHTTP(w, r)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Gateway-initiated callback: no auth, the conditional transition
		// keyed by transaction id is the protection.
		if h.Payment != nil {
			r.Get("/payments/payoneer/callback", h.Payment.Callback)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/register", h.Auth.Register)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		// Public storefront surface.
		if h.Catalog != nil {
			r.Get("/services", h.Catalog.ListServices)
			r.Get("/services/{id}", h.Catalog.GetService)
		}
		if h.Rates != nil {
			r.Get("/rates", h.Rates.GetRates)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.Me)

			if h.Order != nil {
				pr.Route("/orders", func(or chi.Router) {
					or.Post("/checkout", h.Order.Checkout)
					or.Get("/my", h.Order.GetMyOrders)
					or.Get("/{id}", h.Order.GetOrder)
					or.Get("/{id}/download", h.Order.Download)
				})
			}

			if h.Payment != nil {
				pr.Post("/payments/payoneer/create", h.Payment.CreatePayment)
			}

			if h.Notification != nil {
				pr.Get("/notifications/my", h.Notification.GetMyNotifications)
			}

			if h.Affiliate != nil {
				pr.Get("/affiliates/my", h.Affiliate.GetMyAffiliate)
			}

			pr.Route("/admin", func(ar chi.Router) {
				if h.Catalog != nil {
					ar.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManageServices())
						mr.Get("/services", h.Catalog.ListAllServices)
						mr.Post("/services", h.Catalog.CreateService)
						mr.Patch("/services/{id}", h.Catalog.UpdateService)
						mr.Delete("/services/{id}", h.Catalog.DeleteService)
						mr.Post("/services/{id}/image", h.Catalog.UploadImage)
						mr.Post("/services/{id}/asset", h.Catalog.UploadAsset)
					})
				}

				if h.Order != nil {
					ar.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManageOrders())
						mr.Get("/orders", h.Order.ListAllOrders)
						mr.Patch("/orders/{id}/status", h.Order.UpdateStatus)
					})
				}

				if h.Affiliate != nil {
					ar.Group(func(mr chi.Router) {
						mr.Use(rbac.RequirePayoutAffiliates())
						mr.Get("/payout-requests", h.Affiliate.ListPayoutRequests)
						mr.Post("/payout-requests/{id}/pay", h.Affiliate.PayAffiliate)
					})
				}
			})
		})
	})
}
