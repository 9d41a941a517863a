// Package diff computes the structural difference between two schema
// snapshots. The result is a plan for migrating the target schema to match
// the source: tables to create, tables to drop, and per-table change sets
// for tables present on both sides. Computation is pure and deterministic;
// the same pair of schemas always yields the same diff regardless of load
// order.
package diff

import (
	"github.com/sqldrift/sqldrift/internal/schema"
)

// SchemaDiff holds the three table buckets of a comparison. Tables that are
// identical on both sides appear in none of them.
type SchemaDiff struct {
	Created []*schema.Table // in source only, rendered as CREATE TABLE
	Dropped []*schema.Table // in target only, rendered as DROP TABLE
	Altered []*TableDiff    // on both sides with structural differences
}

// Empty reports whether the two schemas are structurally identical.
func (d *SchemaDiff) Empty() bool {
	return len(d.Created) == 0 && len(d.Dropped) == 0 && len(d.Altered) == 0
}

// Tables returns the number of tables the diff touches.
func (d *SchemaDiff) Tables() int {
	return len(d.Created) + len(d.Dropped) + len(d.Altered)
}

// TableDiff is the change set for one table present in both schemas. Added
// and modified entries carry the source-side definition (what the table
// should become); removed entries carry the target-side definition (what is
// being taken away). A constraint whose definition changed appears in both
// the removed and added lists, since keys and foreign keys are never
// modified in place.
type TableDiff struct {
	Name               string
	AddedColumns       []*schema.Column
	RemovedColumns     []*schema.Column
	ModifiedColumns    []*schema.Column
	AddedConstraints   []*schema.Constraint
	RemovedConstraints []*schema.Constraint

	// Options carries only the changed table options, empty fields meaning
	// unchanged. Nil when nothing differs.
	Options *schema.TableOptions
}

// Empty reports whether the table diff contains no changes.
func (td *TableDiff) Empty() bool {
	return len(td.AddedColumns) == 0 &&
		len(td.RemovedColumns) == 0 &&
		len(td.ModifiedColumns) == 0 &&
		len(td.AddedConstraints) == 0 &&
		len(td.RemovedConstraints) == 0 &&
		td.Options == nil
}

// Compute compares two schemas and returns the migration plan that would
// bring target in line with source. Tables are matched by exact name,
// columns by name, constraints by kind and name (the primary key is a
// per-table singleton). Buckets are ordered by table name; entries within a
// table follow the declaration order of the side they came from.
func Compute(source, target *schema.Schema) *SchemaDiff {
	d := &SchemaDiff{}
	for _, name := range source.TableNames() {
		src := source.Tables[name]
		tgt, ok := target.Tables[name]
		if !ok {
			d.Created = append(d.Created, src)
			continue
		}
		if td := compareTable(src, tgt); !td.Empty() {
			d.Altered = append(d.Altered, td)
		}
	}
	for _, name := range target.TableNames() {
		if _, ok := source.Tables[name]; !ok {
			d.Dropped = append(d.Dropped, target.Tables[name])
		}
	}
	return d
}

func compareTable(src, tgt *schema.Table) *TableDiff {
	td := &TableDiff{Name: src.Name}

	for _, sc := range src.Columns {
		tc := tgt.Column(sc.Name)
		switch {
		case tc == nil:
			td.AddedColumns = append(td.AddedColumns, sc)
		case !sc.Equal(tc):
			td.ModifiedColumns = append(td.ModifiedColumns, sc)
		}
	}
	for _, tc := range tgt.Columns {
		if src.Column(tc.Name) == nil {
			td.RemovedColumns = append(td.RemovedColumns, tc)
		}
	}

	for _, sc := range src.Constraints {
		tc := tgt.Constraint(sc.Kind, sc.Name)
		switch {
		case tc == nil:
			td.AddedConstraints = append(td.AddedConstraints, sc)
		case !sc.Equal(tc):
			td.RemovedConstraints = append(td.RemovedConstraints, tc)
			td.AddedConstraints = append(td.AddedConstraints, sc)
		}
	}
	for _, tc := range tgt.Constraints {
		if src.Constraint(tc.Kind, tc.Name) == nil {
			td.RemovedConstraints = append(td.RemovedConstraints, tc)
		}
	}

	if src.Options != tgt.Options {
		var opts schema.TableOptions
		if src.Options.Engine != tgt.Options.Engine {
			opts.Engine = src.Options.Engine
		}
		// Charset and collation travel together: a collation change
		// re-asserts the charset so the rendered clause is complete.
		if src.Options.Charset != tgt.Options.Charset || src.Options.Collate != tgt.Options.Collate {
			opts.Charset = src.Options.Charset
			opts.Collate = src.Options.Collate
		}
		if opts != (schema.TableOptions{}) {
			td.Options = &opts
		}
	}
	return td
}
