package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/iqbalbaharum/pool-sniper/internal/storage"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/iqbalbaharum/pool-sniper/internal/utils"
)

type poolHandler struct {
}

func NewPoolHandler() *poolHandler {
	return &poolHandler{}
}

// Get serves a genesis record by amm id, cache first, MySQL on miss.
func (h *poolHandler) Get(w http.ResponseWriter, r *http.Request) {
	ammId := chi.URLParam(r, "ammId")
	ctx := r.Context()

	rec, err := storage.Cache.Get(ctx, ammId)
	if err != nil {
		rec, err = storage.Pool.FindByAmmID(ctx, ammId)
	}

	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			http.Error(w, "pool not found", http.StatusNotFound)
			return
		}
		select {
		case <-ctx.Done():
			http.Error(w, ErrTimeout, http.StatusGatewayTimeout)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	utils.Encode(w, r, http.StatusOK, rec)
}
