package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/lib/pq"
)

// EnsureDatabase creates the target database when it does not exist yet,
// connecting through the maintenance database of the same server.
func EnsureDatabase(connString string) error {
	dbName, err := databaseName(connString)
	if err != nil {
		return fmt.Errorf("parse connection string: %w", err)
	}

	rootConn, err := withDatabaseName(connString, "postgres")
	if err != nil {
		return fmt.Errorf("build maintenance connection string: %w", err)
	}

	db, err := sql.Open("postgres", rootConn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer db.Close()

	var one int
	err = db.QueryRow("SELECT 1 FROM pg_database WHERE datname = $1", dbName).Scan(&one)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check database existence: %w", err)
	}

	log.Printf("Creating database: %s", dbName)
	if _, err := db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName)); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return nil
}

func databaseName(connString string) (string, error) {
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		u, err := url.Parse(connString)
		if err != nil {
			return "", err
		}
		name := strings.TrimPrefix(u.Path, "/")
		if name == "" {
			return "", fmt.Errorf("connection URL has no database name")
		}
		return name, nil
	}

	for _, pair := range strings.Fields(connString) {
		if strings.HasPrefix(pair, "dbname=") {
			return strings.TrimPrefix(pair, "dbname="), nil
		}
	}
	return "", fmt.Errorf("no database name in connection string")
}

func withDatabaseName(connString, name string) (string, error) {
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		u, err := url.Parse(connString)
		if err != nil {
			return "", err
		}
		u.Path = "/" + name
		return u.String(), nil
	}

	parts := strings.Fields(connString)
	replaced := false
	for i, pair := range parts {
		if strings.HasPrefix(pair, "dbname=") {
			parts[i] = "dbname=" + name
			replaced = true
		}
	}
	if !replaced {
		parts = append(parts, "dbname="+name)
	}
	return strings.Join(parts, " "), nil
}
