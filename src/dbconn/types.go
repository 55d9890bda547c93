// Package dbconn manages the external database connections used by the
// query tools. Connections live in the key-value store, not the relational
// store; at most one is active at a time.
package dbconn

import (
	"errors"
	"time"
)

// Type is the closed set of supported database engines.
type Type string

const (
	TypeSQLite   Type = "sqlite"
	TypePostgres Type = "postgres"
	TypeMySQL    Type = "mysql"
	TypeMongoDB  Type = "mongodb"
)

// Connection describes one configured external database.
type Connection struct {
	ID               string    `json:"id"`
	Name             string    `json:"name" validate:"required"`
	Type             Type      `json:"type" validate:"required,oneof=sqlite postgres mysql mongodb"`
	Host             string    `json:"host,omitempty"`
	Port             int       `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Username         string    `json:"username,omitempty"`
	Password         string    `json:"password,omitempty"`
	Database         string    `json:"database,omitempty"`
	ConnectionString string    `json:"connectionString,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	IsActive         bool      `json:"isActive"`
}

var (
	// ErrNotConfigured indicates an action required an active connection
	// and none is set.
	ErrNotConfigured = errors.New("no active database connection, configure a database connection first")

	// ErrConnectionNotFound indicates the referenced connection id does not exist.
	ErrConnectionNotFound = errors.New("database connection not found")
)
