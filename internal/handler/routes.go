package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const ErrTimeout = "request timed out"

func CreateRoutes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	var PoolHandler = NewPoolHandler()
	var TradeHandler = NewTradeHandler()
	var SessionHandler = NewSessionHandler()

	r.Route("/pool", func(r chi.Router) {
		r.Get("/{ammId}", PoolHandler.Get)
	})

	r.Route("/trade", func(r chi.Router) {
		r.Get("/", TradeHandler.Get)
		r.Delete("/", TradeHandler.DeleteAll)
	})

	r.Route("/session", func(r chi.Router) {
		r.Get("/", SessionHandler.All)
		r.Get("/{ammId}", SessionHandler.Get)
	})

	return r
}
