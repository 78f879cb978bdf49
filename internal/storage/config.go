package storage

const (
	KEY_RECORD  = "storage::pool_record"
	KEY_SESSION = "storage::watch_session"
)

const (
	TABLE_NAME_POOL  = "pools"
	TABLE_NAME_TRADE = "trades"
)
