package storage

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
)

var (
	Pool     *RecordStorage
	TradeLog *TradeStorage
	Session  *SessionStorage
	Cache    *RecordCache
)

// Init wires the package-level stores the HTTP handlers read from.
// Pipeline components receive these same stores by injection.
func Init(db *sql.DB, redisClient *redis.Client) {
	Pool = NewRecordStorage(db)
	TradeLog = NewTradeStorage(db)
	Session = NewSessionStorage(redisClient)
	Cache = NewRecordCache(redisClient)
}
