package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iqbalbaharum/pool-sniper/internal/types"
)

// RecordStorage persists pool-genesis records. Records are write-once:
// insert assigns the id, reads return an immutable snapshot.
type RecordStorage struct {
	client *sql.DB
}

func NewRecordStorage(db *sql.DB) *RecordStorage {
	return &RecordStorage{client: db}
}

func (s *RecordStorage) Insert(ctx context.Context, rec *types.PoolGenesisRecord) (int64, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}

	query := `INSERT INTO pools (ammId, record, createdAt) VALUES (?, ?, ?)`

	result, err := s.client.ExecContext(ctx, query, rec.AmmID.String(), data, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert pool record: %w", err)
	}

	return result.LastInsertId()
}

func (s *RecordStorage) FindByID(ctx context.Context, id int64) (*types.PoolGenesisRecord, error) {
	query := `SELECT id, record FROM pools WHERE id = ?`
	return s.scanOne(s.client.QueryRowContext(ctx, query, id))
}

func (s *RecordStorage) FindByAmmID(ctx context.Context, ammId string) (*types.PoolGenesisRecord, error) {
	query := `SELECT id, record FROM pools WHERE ammId = ?`
	return s.scanOne(s.client.QueryRowContext(ctx, query, ammId))
}

func (s *RecordStorage) scanOne(row *sql.Row) (*types.PoolGenesisRecord, error) {
	var id int64
	var data []byte

	if err := row.Scan(&id, &data); err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrScanData, err)
	}

	var rec types.PoolGenesisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	rec.ID = id

	return &rec, nil
}
