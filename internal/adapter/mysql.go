package adapter

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	db "github.com/iqbalbaharum/pool-sniper/internal/database"
)

// NewMySQLClient connects, pings and bootstraps the schema. The
// returned handle is injected into the stores; callers close it on
// shutdown.
func NewMySQLClient(dsn string, dbName string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("MySQL DSN is empty")
	}

	client, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	if err := client.Ping(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	database := db.NewDatabase(client, dbName)
	if err := database.CreateDatabaseAndTables(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
