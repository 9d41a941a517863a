package source

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sqldrift/sqldrift/internal/schema"
)

// DBLoader reads a schema snapshot from a live MySQL server by fetching
// SHOW CREATE TABLE output for every base table.
type DBLoader struct {
	spec     *ConnSpec
	maxConns int
}

// NewDBLoader creates a loader for the given connection. maxConns bounds
// both the connection pool and the number of in-flight definition fetches.
func NewDBLoader(spec *ConnSpec, maxConns int) *DBLoader {
	if maxConns < 1 {
		maxConns = 1
	}
	return &DBLoader{spec: spec, maxConns: maxConns}
}

func (l *DBLoader) Describe() string { return "database " + l.spec.Redacted() }

// Load connects, lists the database's base tables, and fetches their
// definitions concurrently. Views are excluded by the listing query. A
// single failed fetch or parse aborts the load.
func (l *DBLoader) Load(ctx context.Context) (*schema.Schema, error) {
	db, err := sql.Open("mysql", l.spec.DSN())
	if err != nil {
		return nil, &ConnectionError{Target: l.spec.Redacted(), Err: err}
	}
	defer db.Close()
	db.SetMaxOpenConns(l.maxConns)

	if err := db.PingContext(ctx); err != nil {
		return nil, &ConnectionError{Target: l.spec.Redacted(), Err: err}
	}

	names, err := listBaseTables(ctx, db)
	if err != nil {
		return nil, err
	}

	ddls := make([]string, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.maxConns)
	for i, name := range names {
		g.Go(func() error {
			stmt, err := showCreateTable(gctx, db, name)
			if err != nil {
				return err
			}
			ddls[i] = stmt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buildSchema(l.spec.Database, ddls, l.maxConns)
}

func listBaseTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, fmt.Errorf("scanning table listing: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func showCreateTable(ctx context.Context, db *sql.DB, table string) (string, error) {
	var name, stmt string
	row := db.QueryRowContext(ctx, "SHOW CREATE TABLE "+quoteIdent(table))
	if err := row.Scan(&name, &stmt); err != nil {
		return "", fmt.Errorf("fetching definition of %s: %w", table, err)
	}
	return stmt, nil
}

func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}
