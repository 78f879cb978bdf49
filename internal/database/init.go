package db

import (
	"database/sql"
	"fmt"
)

type Database struct {
	dbName      string
	MysqlClient *sql.DB
}

// DDL is embedded rather than read from a migrations directory so a
// fresh deployment needs nothing on disk beyond the binary.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS pools (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		ammId VARCHAR(64) NOT NULL,
		record JSON NOT NULL,
		createdAt BIGINT NOT NULL,
		UNIQUE KEY uniq_amm (ammId)
	)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		ammId VARCHAR(64) NOT NULL,
		mint VARCHAR(64) NOT NULL,
		action VARCHAR(8) NOT NULL,
		amount VARCHAR(40) NOT NULL,
		signature VARCHAR(128) NOT NULL,
		status VARCHAR(16) NOT NULL,
		timestamp BIGINT NOT NULL,
		KEY idx_amm (ammId)
	)`,
}

func NewDatabase(client *sql.DB, dbName string) *Database {
	return &Database{
		dbName:      dbName,
		MysqlClient: client,
	}
}

func (d *Database) CreateDatabaseAndTables() error {
	if _, err := d.MysqlClient.Exec(`CREATE DATABASE IF NOT EXISTS ` + d.dbName); err != nil {
		return fmt.Errorf("failed to create db %s: %w", d.dbName, err)
	}

	if _, err := d.MysqlClient.Exec(`USE ` + d.dbName); err != nil {
		return fmt.Errorf("failed to use db %s: %w", d.dbName, err)
	}

	for _, ddl := range tables {
		if _, err := d.MysqlClient.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}
