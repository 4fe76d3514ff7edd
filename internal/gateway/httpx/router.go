package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/menulink/ordercore/internal/gateway/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/sessions", handler.OpenSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Delete("/", handler.CloseSession)
		r.Get("/catalog", handler.GetCatalog)
		r.Get("/cart", handler.GetCart)
		r.Post("/cart/lines", handler.AddLine)
		r.Post("/cart/lines/{key}/increment", handler.IncrementLine)
		r.Post("/cart/lines/{key}/decrement", handler.DecrementLine)
		r.Delete("/cart/lines/{key}", handler.RemoveLine)
		r.Post("/checkout", handler.Checkout)
	})
	r.Get("/orders/{id}", handler.GetOrder)

	return r
}
