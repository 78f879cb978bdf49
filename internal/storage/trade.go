package storage

import (
	"database/sql"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/iqbalbaharum/pool-sniper/internal/utils"
)

type TradeStorage struct {
	client *sql.DB
}

func NewTradeStorage(db *sql.DB) *TradeStorage {
	return &TradeStorage{client: db}
}

func (s *TradeStorage) Set(trade *types.Trade) error {
	query := `
			INSERT INTO trades (ammId, mint, action, amount, signature, status, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`

	_, err := s.client.Exec(
		query,
		trade.AmmId.String(),
		trade.Mint.String(),
		trade.Action,
		trade.Amount,
		trade.Signature,
		trade.Status,
		trade.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("%s: %w", ErrExecuteStatement, err)
	}

	return nil
}

func (s *TradeStorage) Search(filter types.MySQLFilter) ([]types.Trade, error) {
	query, values := utils.BuildSearchQuery(TABLE_NAME_TRADE, filter)

	rows, err := s.client.Query(query, values...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrExecuteQuery, err)
	}
	defer rows.Close()

	var trades []types.Trade
	for rows.Next() {
		var id int64
		var ammId, mint string
		var trade types.Trade

		if err := rows.Scan(&id, &ammId, &mint, &trade.Action, &trade.Amount, &trade.Signature, &trade.Status, &trade.Timestamp); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrScanData, err)
		}

		amm, err := solana.PublicKeyFromBase58(ammId)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrScanData, err)
		}
		m, err := solana.PublicKeyFromBase58(mint)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrScanData, err)
		}

		trade.AmmId = &amm
		trade.Mint = &m
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

func (s *TradeStorage) DeleteAll() error {
	if _, err := s.client.Exec(`DELETE FROM trades`); err != nil {
		return fmt.Errorf("%s: %w", ErrExecuteStatement, err)
	}
	return nil
}
