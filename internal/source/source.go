// Package source loads schema snapshots for comparison, either from SQL
// dump files or from a live MySQL server.
package source

import (
	"context"
	"fmt"

	"github.com/sqldrift/sqldrift/internal/schema"
)

// Data source modes accepted on the command line.
const (
	ModeFile = "file"
	ModeDB   = "db"
)

// Loader produces one side of a schema comparison.
type Loader interface {
	Load(ctx context.Context) (*schema.Schema, error)
	Describe() string
}

// New returns the loader for the given mode. For ModeFile the spec is a path
// to an SQL dump; for ModeDB it is a connection string of the form
// user:password@host:port~database.
func New(mode, spec string, workers int) (Loader, error) {
	switch mode {
	case ModeFile:
		return NewFileLoader(spec, workers), nil
	case ModeDB:
		cs, err := ParseConnString(spec)
		if err != nil {
			return nil, err
		}
		return NewDBLoader(cs, workers), nil
	default:
		return nil, fmt.Errorf("unknown data source %q (expected file or db)", mode)
	}
}

// ConnectionError reports a failure to reach or authenticate against a
// database, including a malformed connection string. Target never contains
// credentials.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
