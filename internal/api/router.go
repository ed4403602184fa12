package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hexvale/frontier/internal/services/gamesvc"
)

// NewRouter constructs the router with all API endpoints registered.
func NewRouter(svc *gamesvc.Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/games", h.CreateGameHandler)

	r.Route("/games/{gameID}", func(r chi.Router) {
		r.Get("/", h.GetStateHandler)
		r.Get("/events", h.EventsHandler)
		r.Post("/roll", h.RollHandler)
		r.Post("/build", h.BuildHandler)
		r.Post("/dev-cards/buy", h.BuyCardHandler)
		r.Post("/dev-cards/play", h.PlayCardHandler)
		r.Post("/maritime", h.MaritimeTradeHandler)

		r.Route("/trades", func(r chi.Router) {
			r.Get("/", h.ListTradesHandler)
			r.Post("/", h.ProposeTradeHandler)
			r.Get("/{tradeID}", h.GetTradeHandler)
			r.Post("/{tradeID}/accept", h.AcceptTradeHandler)
			r.Post("/{tradeID}/confirm", h.ConfirmTradeHandler)
			r.Post("/{tradeID}/settle", h.SettleTradeHandler)
			r.Post("/{tradeID}/cancel", h.CancelTradeHandler)
		})
	})

	return r
}
