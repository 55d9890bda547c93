package tools

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ollamadesk/ollamadesk/src/dbconn"
)

const defaultRowLimit = 100

// DatabaseTools builds the database query tools over the connection manager.
// Each execution opens the target database fresh and closes it when done;
// connections are small local databases, not pooled server links.
type DatabaseTools struct {
	manager *dbconn.Manager
	logger  *slog.Logger
}

// NewDatabaseTools wires the query tools to a connection manager.
func NewDatabaseTools(manager *dbconn.Manager, logger *slog.Logger) *DatabaseTools {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatabaseTools{manager: manager, logger: logger.With("component", "dbtools")}
}

// RegisterAll adds every database tool to the toolbox.
func (dt *DatabaseTools) RegisterAll(tb *Toolbox) error {
	for _, tool := range []Tool{dt.ExecuteQueryTool(), dt.SchemaToolDef(), dt.TransactionTool()} {
		if err := tb.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteQueryInput are the parameters for execute_query.
type ExecuteQueryInput struct {
	Query    string `json:"query" required:"true" description:"The SQL query to execute"`
	Database string `json:"database,omitempty" description:"Connection name to run against, defaults to the active connection"`
	Limit    int    `json:"limit,omitempty" description:"Maximum number of rows to return, defaults to 100"`
}

// ExecuteQueryTool returns the execute_query tool.
func (dt *DatabaseTools) ExecuteQueryTool() Tool {
	return MustNew("execute_query",
		"Execute a SQL query against the configured database and return the resulting rows as a JSON array.",
		func(ctx context.Context, input ExecuteQueryInput) (string, error) {
			if strings.TrimSpace(input.Query) == "" {
				return "", fmt.Errorf("query cannot be empty")
			}

			db, conn, err := dt.open(ctx, input.Database)
			if err != nil {
				return "", err
			}
			defer db.Close()

			limit := input.Limit
			if limit <= 0 {
				limit = defaultRowLimit
			}

			if !isRowQuery(input.Query) {
				res, err := db.ExecContext(ctx, input.Query)
				if err != nil {
					return "", fmt.Errorf("query failed: %w", err)
				}
				affected, _ := res.RowsAffected()
				dt.logger.Info("statement executed", "connection", conn.Name, "rows_affected", affected)
				return fmt.Sprintf("OK, %d row(s) affected.", affected), nil
			}

			rows, err := db.QueryContext(ctx, input.Query)
			if err != nil {
				return "", fmt.Errorf("query failed: %w", err)
			}
			defer rows.Close()

			collected, truncated, err := collectRows(rows, limit)
			if err != nil {
				return "", err
			}
			dt.logger.Info("query executed", "connection", conn.Name, "rows", len(collected), "truncated", truncated)

			payload, err := json.Marshal(collected)
			if err != nil {
				return "", fmt.Errorf("failed to encode rows: %w", err)
			}
			out := fmt.Sprintf("Returned %d row(s)", len(collected))
			if truncated {
				out += fmt.Sprintf(" (truncated to %d)", limit)
			}
			return out + ":\n" + string(payload), nil
		})
}

// SchemaInput are the parameters for get_database_schema.
type SchemaInput struct {
	Database string `json:"database,omitempty" description:"Connection name to inspect, defaults to the active connection"`
	Table    string `json:"table,omitempty" description:"Restrict output to a single table"`
}

// SchemaToolDef returns the get_database_schema tool.
func (dt *DatabaseTools) SchemaToolDef() Tool {
	return MustNew("get_database_schema",
		"Describe the tables and columns of the configured database. Optionally restrict to one table.",
		func(ctx context.Context, input SchemaInput) (string, error) {
			db, conn, err := dt.open(ctx, input.Database)
			if err != nil {
				return "", err
			}
			defer db.Close()

			switch conn.Type {
			case dbconn.TypeSQLite:
				return dt.sqliteSchema(ctx, db, input.Table)
			case dbconn.TypePostgres:
				return dt.postgresSchema(ctx, db, input.Table)
			default:
				return "", fmt.Errorf("schema inspection is not supported for %s", conn.Type)
			}
		})
}

// TransactionInput are the parameters for execute_transaction.
type TransactionInput struct {
	Queries  []string `json:"queries" required:"true" description:"SQL statements to run atomically, in order"`
	Database string   `json:"database,omitempty" description:"Connection name to run against, defaults to the active connection"`
}

// TransactionTool returns the execute_transaction tool.
func (dt *DatabaseTools) TransactionTool() Tool {
	return MustNew("execute_transaction",
		"Execute multiple SQL statements in a single transaction. All statements succeed or none are applied.",
		func(ctx context.Context, input TransactionInput) (string, error) {
			if len(input.Queries) == 0 {
				return "", fmt.Errorf("queries cannot be empty")
			}

			db, conn, err := dt.open(ctx, input.Database)
			if err != nil {
				return "", err
			}
			defer db.Close()

			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return "", fmt.Errorf("failed to begin transaction: %w", err)
			}

			var total int64
			for i, q := range input.Queries {
				res, err := tx.ExecContext(ctx, q)
				if err != nil {
					tx.Rollback()
					return "", fmt.Errorf("statement %d failed, transaction rolled back: %w", i+1, err)
				}
				affected, _ := res.RowsAffected()
				total += affected
			}
			if err := tx.Commit(); err != nil {
				return "", fmt.Errorf("commit failed: %w", err)
			}

			dt.logger.Info("transaction committed", "connection", conn.Name, "statements", len(input.Queries))
			return fmt.Sprintf("Transaction committed: %d statement(s), %d row(s) affected.", len(input.Queries), total), nil
		})
}

// open resolves the target connection and opens a database handle for it.
// An empty name means the active connection.
func (dt *DatabaseTools) open(ctx context.Context, name string) (*sql.DB, *dbconn.Connection, error) {
	conn, err := dt.resolve(name)
	if err != nil {
		return nil, nil, err
	}

	driver, dsn, err := conn.DSN()
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s database: %w", conn.Type, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, conn, nil
}

func (dt *DatabaseTools) resolve(name string) (*dbconn.Connection, error) {
	if name == "" {
		return dt.manager.Active()
	}
	for _, c := range dt.manager.List() {
		if strings.EqualFold(c.Name, name) {
			conn := c
			return &conn, nil
		}
	}
	return nil, fmt.Errorf("no connection named %q: %w", name, dbconn.ErrConnectionNotFound)
}

func (dt *DatabaseTools) sqliteSchema(ctx context.Context, db *sql.DB, table string) (string, error) {
	tables, err := dt.listSQLiteTables(ctx, db, table)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "No tables found.", nil
	}

	var b strings.Builder
	for _, t := range tables {
		fmt.Fprintf(&b, "TABLE %s\n", t)
		rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", t))
		if err != nil {
			return "", fmt.Errorf("failed to inspect table %s: %w", t, err)
		}
		for rows.Next() {
			var (
				cid     int
				name    string
				ctype   string
				notNull int
				dflt    sql.NullString
				pk      int
			)
			if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
				rows.Close()
				return "", err
			}
			fmt.Fprintf(&b, "  %s %s", name, ctype)
			if pk > 0 {
				b.WriteString(" PRIMARY KEY")
			}
			if notNull == 1 {
				b.WriteString(" NOT NULL")
			}
			b.WriteString("\n")
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return "", err
		}
		rows.Close()
	}
	return b.String(), nil
}

func (dt *DatabaseTools) listSQLiteTables(ctx context.Context, db *sql.DB, only string) ([]string, error) {
	const q = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if only != "" && !strings.EqualFold(name, only) {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (dt *DatabaseTools) postgresSchema(ctx context.Context, db *sql.DB, table string) (string, error) {
	q := `SELECT table_name, column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public'`
	args := []any{}
	if table != "" {
		q += ` AND table_name = $1`
		args = append(args, table)
	}
	q += ` ORDER BY table_name, ordinal_position`

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return "", fmt.Errorf("failed to inspect schema: %w", err)
	}
	defer rows.Close()

	var (
		b       strings.Builder
		current string
	)
	for rows.Next() {
		var tbl, col, dtype, nullable string
		if err := rows.Scan(&tbl, &col, &dtype, &nullable); err != nil {
			return "", err
		}
		if tbl != current {
			fmt.Fprintf(&b, "TABLE %s\n", tbl)
			current = tbl
		}
		fmt.Fprintf(&b, "  %s %s", col, dtype)
		if nullable == "NO" {
			b.WriteString(" NOT NULL")
		}
		b.WriteString("\n")
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if b.Len() == 0 {
		return "No tables found.", nil
	}
	return b.String(), nil
}

// collectRows drains up to limit rows into generic maps. Byte columns are
// converted to strings so the JSON output stays readable.
func collectRows(rows *sql.Rows, limit int) ([]map[string]any, bool, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, false, err
	}

	out := make([]map[string]any, 0, limit)
	truncated := false
	for rows.Next() {
		if len(out) >= limit {
			truncated = true
			break
		}
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, false, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out, truncated, rows.Err()
}

// isRowQuery reports whether a statement is expected to produce rows.
func isRowQuery(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"SELECT", "WITH", "PRAGMA", "EXPLAIN", "SHOW"} {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return false
}
