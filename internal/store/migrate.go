package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Migration is one schema file
type Migration struct {
	Name string
	SQL  string
}

// LoadMigrations reads every .sql file under dir, ordered by name
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations %s: %w", dir, err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		body, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Name: e.Name(), SQL: string(body)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SplitStatements breaks a file into single statements for drivers that
// reject multi-statement Exec. Semicolons inside quotes are not handled.
func SplitStatements(script string) []string {
	var stmts []string
	for _, part := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// OpenPostgresSQL opens a database/sql handle for schema work. The pgx pool
// serves everything else.
func OpenPostgresSQL(ctx context.Context, url string) (*sql.DB, error) {
	connector, err := pq.NewConnector(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres URL: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, describePgError("ping postgres", err)
	}
	return db, nil
}

// MigratePostgres applies pending migrations, each in its own transaction,
// and records them in schema_migrations. It returns the names applied.
func MigratePostgres(ctx context.Context, db *sql.DB, migrations []Migration, logger *zap.SugaredLogger) ([]string, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return nil, describePgError("create schema_migrations", err)
	}

	applied := make(map[string]bool)
	rows, err := db.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, describePgError("list migrations", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		applied[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var done []string
	for _, m := range migrations {
		if applied[m.Name] {
			continue
		}
		if err := applyPostgres(ctx, db, m); err != nil {
			return done, err
		}
		logger.Infow("Applied migration", "store", "postgres", "name", m.Name)
		done = append(done, m.Name)
	}
	return done, nil
}

func applyPostgres(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return describePgError(m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.Name); err != nil {
		return describePgError(m.Name, err)
	}
	return tx.Commit()
}

func describePgError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %s (SQLSTATE %s): %w", op, pqErr.Message, pqErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// MigrateClickHouse runs every statement of every migration. The files use
// IF NOT EXISTS so reruns are harmless.
func MigrateClickHouse(ctx context.Context, conn driver.Conn, migrations []Migration, logger *zap.SugaredLogger) error {
	for _, m := range migrations {
		for i, stmt := range SplitStatements(m.SQL) {
			if err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("%s statement %d: %w", m.Name, i+1, err)
			}
		}
		logger.Infow("Applied migration", "store", "clickhouse", "name", m.Name)
	}
	return nil
}
