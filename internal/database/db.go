package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// SQLConfig holds what is needed to reach a MySQL or Postgres server.
type SQLConfig struct {
	Driver  string // "mysql" or "postgres"
	User    string
	Pass    string
	Host    string
	Port    string
	Name    string
	SSLMode string // postgres only
}

// DSN renders the driver-specific connection string.
func (c SQLConfig) DSN() (string, error) {
	switch c.Driver {
	case "mysql":
		auth := c.User
		if c.Pass != "" {
			auth = fmt.Sprintf("%s:%s", c.User, c.Pass)
		}
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, c.Host, c.Port, c.Name), nil
	case "postgres":
		sslmode := c.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Name, sslmode)
		if c.Pass != "" {
			dsn += fmt.Sprintf(" password=%s", c.Pass)
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("unsupported sql driver %q", c.Driver)
	}
}

// OpenSQL connects to MySQL or Postgres and verifies the connection.
func OpenSQL(cfg SQLConfig) (*sqlx.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
