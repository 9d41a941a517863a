package source

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/sqldrift/sqldrift/internal/ddl"
	"github.com/sqldrift/sqldrift/internal/schema"
)

// FileLoader reads a schema snapshot from an SQL dump file.
type FileLoader struct {
	path    string
	workers int
}

// NewFileLoader creates a loader for the dump file at path.
func NewFileLoader(path string, workers int) *FileLoader {
	if workers < 1 {
		workers = 1
	}
	return &FileLoader{path: path, workers: workers}
}

func (l *FileLoader) Describe() string { return "file " + l.path }

// Load reads the dump and parses every CREATE TABLE statement in it. Any
// statement that fails to parse fails the whole load.
func (l *FileLoader) Load(ctx context.Context) (*schema.Schema, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("reading schema dump: %w", err)
	}
	return buildSchema(l.path, ddl.ParseDump(string(data)), l.workers)
}

// buildSchema parses raw DDL statements in parallel and assembles the
// resulting tables into a schema. Results land in a slice indexed by
// statement position, so worker scheduling cannot change the outcome.
func buildSchema(name string, ddls []string, workers int) (*schema.Schema, error) {
	tables := make([]*schema.Table, len(ddls))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, stmt := range ddls {
		g.Go(func() error {
			t, err := ddl.ParseCreateTable(stmt)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := schema.New(name)
	for _, t := range tables {
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}
