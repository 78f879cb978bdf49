package storage

import (
	"context"
	"encoding/json"

	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/redis/go-redis/v9"
)

// SessionStorage mirrors watch-session lifecycle states so operators
// can inspect live sessions without reaching into the watcher.
type SessionStorage struct {
	client *redis.Client
}

func NewSessionStorage(client *redis.Client) *SessionStorage {
	return &SessionStorage{client: client}
}

func (s *SessionStorage) Set(ctx context.Context, status types.SessionStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}

	return s.client.HSet(ctx, status.AmmId.String(), KEY_SESSION, data).Err()
}

func (s *SessionStorage) Get(ctx context.Context, ammId string) (*types.SessionStatus, error) {
	data, err := s.client.HGet(ctx, ammId, KEY_SESSION).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, types.ErrNotFound
		}
		return nil, err
	}

	var status types.SessionStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, err
	}

	return &status, nil
}

func (s *SessionStorage) All(ctx context.Context) ([]types.SessionStatus, error) {
	keys, err := s.client.Keys(ctx, "*").Result()
	if err != nil {
		return nil, err
	}

	var sessions []types.SessionStatus
	for _, key := range keys {
		data, err := s.client.HGet(ctx, key, KEY_SESSION).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}

		var status types.SessionStatus
		if err := json.Unmarshal([]byte(data), &status); err != nil {
			return nil, err
		}
		sessions = append(sessions, status)
	}

	return sessions, nil
}
