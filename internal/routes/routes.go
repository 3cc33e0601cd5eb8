package routes

import (
	"github.com/go-chi/chi"

	"github.com/hudsonhicksoffish/the-click-continued/internal/handlers"
	"github.com/hudsonhicksoffish/the-click-continued/internal/ws"
)

func SetRoutes(r *chi.Mux, s *ws.Ws) *handlers.Handler {
	h := handlers.NewHandler(s)

	r.Get("/", h.RootHandler)
	r.Get("/ws", h.HandleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/jackpot", h.JackpotHandler)
		r.Get("/health", h.HealthHandler)
	})

	return h
}
