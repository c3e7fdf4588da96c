package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	consoleHandler "firstpick/internal/adapters/in/http/console/handler"
	"firstpick/internal/adapters/in/http/handlers/common"
	mallHandler "firstpick/internal/adapters/in/http/mall/handler"
	"firstpick/internal/adapters/in/http/middleware"
	usecase "firstpick/internal/application/usecase"
)

// RouterDeps collects the usecases and middleware injected from the container.
type RouterDeps struct {
	CartUC     *usecase.CartUsecase
	CheckoutUC *usecase.CheckoutUsecase
	OrderUC    *usecase.OrderUsecase
	ProductUC  *usecase.ProductUsecase
	ContactUC  *usecase.ContactUsecase
	ProfileUC  *usecase.ProfileUsecase

	Auth          *middleware.AuthMiddleware
	AllowedOrigin string
	Log           *zap.Logger

	// Ready reports backend health for /readyz; nil means always ready.
	Ready func(r *http.Request) error
}

// NewRouter mounts:
//
//	/mall/...          public catalog and contact form
//	/mall/me/...       cart, checkout, own orders, profile (signed in)
//	/console/...       admin orders, products, contact inbox (signed in + admin)
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recover(log))
	r.Use(middleware.CORS(deps.AllowedOrigin))
	r.Use(chimw.Timeout(30 * time.Second))
	r.NotFound(common.NotFound)
	r.MethodNotAllowed(common.MethodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if deps.Ready != nil {
			if err := deps.Ready(req); err != nil {
				log.Warn("readiness check failed", zap.Error(err))
				common.WriteError(w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/mall", func(r chi.Router) {
		if deps.ProductUC != nil {
			r.Mount("/", mallHandler.NewCatalogHandler(deps.ProductUC, log))
		}
		if deps.ContactUC != nil {
			r.Mount("/contact", mallHandler.NewContactHandler(deps.ContactUC, log))
		}

		r.Route("/me", func(r chi.Router) {
			r.Use(deps.Auth.Handler)
			if deps.CartUC != nil {
				r.Mount("/cart", mallHandler.NewCartHandler(deps.CartUC, log))
			}
			if deps.CheckoutUC != nil {
				r.Method(http.MethodPost, "/checkout", mallHandler.NewCheckoutHandler(deps.CheckoutUC, log))
			}
			if deps.OrderUC != nil {
				r.Mount("/orders", mallHandler.NewOrderHandler(deps.OrderUC, log))
			}
			if deps.ProfileUC != nil {
				r.Mount("/profile", mallHandler.NewProfileHandler(deps.ProfileUC, log))
			}
		})
	})

	r.Route("/console", func(r chi.Router) {
		r.Use(deps.Auth.Handler)
		r.Use(middleware.RequireAdmin)
		if deps.OrderUC != nil {
			r.Mount("/orders", consoleHandler.NewOrderHandler(deps.OrderUC, log))
		}
		if deps.ProductUC != nil {
			r.Mount("/products", consoleHandler.NewProductHandler(deps.ProductUC, log))
		}
		if deps.ContactUC != nil {
			r.Mount("/contact-submissions", consoleHandler.NewContactHandler(deps.ContactUC, log))
		}
	})

	return r
}
