package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/iqbalbaharum/pool-sniper/internal/storage"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/iqbalbaharum/pool-sniper/internal/utils"
)

type sessionHandler struct {
}

func NewSessionHandler() *sessionHandler {
	return &sessionHandler{}
}

func (h *sessionHandler) All(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessions, err := storage.Session.All(ctx)

	if err != nil {
		select {
		case <-ctx.Done():
			http.Error(w, ErrTimeout, http.StatusGatewayTimeout)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	utils.Encode(w, r, http.StatusOK, sessions)
}

func (h *sessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ammId := chi.URLParam(r, "ammId")
	ctx := r.Context()

	status, err := storage.Session.Get(ctx, ammId)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.Encode(w, r, http.StatusOK, status)
}
