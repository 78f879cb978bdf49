package handler

import (
	"net/http"

	"github.com/iqbalbaharum/pool-sniper/internal/storage"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/iqbalbaharum/pool-sniper/internal/utils"
)

type tradeHandler struct {
}

func NewTradeHandler() *tradeHandler {
	return &tradeHandler{}
}

func (h *tradeHandler) Get(w http.ResponseWriter, r *http.Request) {
	decoded, err := utils.Decode[types.MySQLFilter](r)

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	trades, err := storage.TradeLog.Search(decoded)

	if err != nil {
		select {
		case <-ctx.Done():
			http.Error(w, ErrTimeout, http.StatusGatewayTimeout)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	utils.Encode(w, r, http.StatusOK, trades)
}

func (h *tradeHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := storage.TradeLog.DeleteAll()

	if err != nil {
		select {
		case <-ctx.Done():
			http.Error(w, ErrTimeout, http.StatusGatewayTimeout)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
