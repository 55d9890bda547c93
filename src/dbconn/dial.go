package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DSN builds a driver connection string for the connection. An explicit
// ConnectionString always wins over the individual fields.
func (c *Connection) DSN() (driver, dsn string, err error) {
	switch c.Type {
	case TypeSQLite:
		path := c.ConnectionString
		if path == "" {
			path = c.Database
		}
		if path == "" {
			return "", "", fmt.Errorf("sqlite connection %q has no database path", c.Name)
		}
		return "sqlite", path, nil

	case TypePostgres:
		if c.ConnectionString != "" {
			return "pgx", c.ConnectionString, nil
		}
		u := url.URL{
			Scheme: "postgres",
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:   "/" + c.Database,
		}
		if c.Username != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		}
		return "pgx", u.String(), nil

	default:
		return "", "", fmt.Errorf("%s connections are not supported yet", c.Type)
	}
}

// Test opens the connection and pings it. It does not keep the handle.
func (m *Manager) Test(ctx context.Context, conn *Connection) error {
	driver, dsn, err := conn.DSN()
	if err != nil {
		return err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", conn.Type, err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	m.logger.Info("connection test succeeded", "name", conn.Name, "type", conn.Type)
	return nil
}
