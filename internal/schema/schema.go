package schema

import (
	"fmt"
	"sort"
	"strings"
)

// ConstraintKind identifies the kind of a table constraint. The values are
// the DDL keywords the kind renders to.
type ConstraintKind string

const (
	PrimaryKey  ConstraintKind = "PRIMARY KEY"
	UniqueKey   ConstraintKind = "UNIQUE KEY"
	Key         ConstraintKind = "KEY"
	FullTextKey ConstraintKind = "FULLTEXT KEY"
	ForeignKey  ConstraintKind = "FOREIGN KEY"
)

// ColumnType is a column's data type: semantic name, ordered raw parameters
// (length, precision and scale, or enum members), and the unsigned modifier.
type ColumnType struct {
	Name     string
	Params   []string
	Unsigned bool
}

// Equal reports whether two types are the same. Type names compare
// case-insensitively, parameters exactly.
func (ct ColumnType) Equal(other ColumnType) bool {
	if !strings.EqualFold(ct.Name, other.Name) || ct.Unsigned != other.Unsigned {
		return false
	}
	if len(ct.Params) != len(other.Params) {
		return false
	}
	for i := range ct.Params {
		if ct.Params[i] != other.Params[i] {
			return false
		}
	}
	return true
}

// String renders the type as it appears in DDL, e.g. "decimal(10,2)" or
// "bigint unsigned". Type names are lowercased, the form SHOW CREATE TABLE
// emits.
func (ct ColumnType) String() string {
	s := strings.ToLower(ct.Name)
	if len(ct.Params) > 0 {
		s += "(" + strings.Join(ct.Params, ",") + ")"
	}
	if ct.Unsigned {
		s += " unsigned"
	}
	return s
}

// Column is a single column definition. Default and OnUpdate hold the raw
// literal text as written in the DDL; a nil Default means the column has no
// default at all, while a Default of "NULL" is an explicit null default.
type Column struct {
	Name          string
	Type          ColumnType
	Nullable      bool
	Default       *string
	OnUpdate      *string
	AutoIncrement bool
	Comment       string
	Charset       string
	Collate       string
	Position      int // declaration order, informational only
}

// Equal reports whether two columns define the same structure. Position is
// not compared: declaration order never contributes to a migration.
func (c *Column) Equal(other *Column) bool {
	return c.Name == other.Name &&
		c.Type.Equal(other.Type) &&
		c.Nullable == other.Nullable &&
		strPtrEqual(c.Default, other.Default) &&
		strPtrEqual(c.OnUpdate, other.OnUpdate) &&
		c.AutoIncrement == other.AutoIncrement &&
		c.Comment == other.Comment &&
		c.Charset == other.Charset &&
		c.Collate == other.Collate
}

// IndexColumn is one column of a key, with an optional index prefix length
// (`col`(10) in DDL). SubPart is 0 when no prefix applies.
type IndexColumn struct {
	Name    string
	SubPart int
}

// Constraint is a table-level key or foreign key. Name is empty only for the
// primary key, which is a singleton per table. Columns are ordered and the
// order is significant.
type Constraint struct {
	Kind    ConstraintKind
	Name    string
	Columns []IndexColumn

	// Foreign keys only. OnDelete and OnUpdate are empty for RESTRICT and
	// NO ACTION, the dialect defaults SHOW CREATE TABLE never prints.
	RefTable   string
	RefColumns []string
	OnDelete   string
	OnUpdate   string
}

// Equal reports whether two constraints define the same key.
func (c *Constraint) Equal(other *Constraint) bool {
	if c.Kind != other.Kind || c.Name != other.Name {
		return false
	}
	if len(c.Columns) != len(other.Columns) {
		return false
	}
	for i := range c.Columns {
		if c.Columns[i] != other.Columns[i] {
			return false
		}
	}
	if c.RefTable != other.RefTable || c.OnDelete != other.OnDelete || c.OnUpdate != other.OnUpdate {
		return false
	}
	if len(c.RefColumns) != len(other.RefColumns) {
		return false
	}
	for i := range c.RefColumns {
		if c.RefColumns[i] != other.RefColumns[i] {
			return false
		}
	}
	return true
}

// TableOptions are the table-level storage options the tool models. Engine is
// always InnoDB for supported tables; Collate may be empty.
type TableOptions struct {
	Engine  string
	Charset string
	Collate string
}

// Table is a complete table definition: ordered columns, constraints in
// declaration order, and storage options.
type Table struct {
	Name        string
	Columns     []*Column
	Constraints []*Constraint
	Options     TableOptions
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Constraint returns the constraint with the given kind and name, or nil.
// The primary key is looked up with an empty name.
func (t *Table) Constraint(kind ConstraintKind, name string) *Constraint {
	for _, c := range t.Constraints {
		if c.Kind == kind && c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the table's primary key constraint, or nil.
func (t *Table) PrimaryKey() *Constraint {
	for _, c := range t.Constraints {
		if c.Kind == PrimaryKey {
			return c
		}
	}
	return nil
}

// Equal reports whether two tables define the same structure. Columns must
// match in declaration order; constraints are matched by identity regardless
// of order.
func (t *Table) Equal(other *Table) bool {
	if t.Name != other.Name || t.Options != other.Options {
		return false
	}
	if len(t.Columns) != len(other.Columns) {
		return false
	}
	for i := range t.Columns {
		if !t.Columns[i].Equal(other.Columns[i]) {
			return false
		}
	}
	if len(t.Constraints) != len(other.Constraints) {
		return false
	}
	for _, c := range t.Constraints {
		match := other.Constraint(c.Kind, c.Name)
		if match == nil || !c.Equal(match) {
			return false
		}
	}
	return true
}

// Validate checks the table's structural invariants: unique column names, at
// most one primary key, unique names among named constraints.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
	}
	pks := 0
	names := make(map[string]bool, len(t.Constraints))
	for _, c := range t.Constraints {
		if c.Kind == PrimaryKey {
			pks++
			if pks > 1 {
				return fmt.Errorf("multiple primary keys")
			}
			continue
		}
		key := string(c.Kind) + " " + c.Name
		if names[key] {
			return fmt.Errorf("duplicate constraint %q", c.Name)
		}
		names[key] = true
	}
	return nil
}

// Schema is one complete snapshot of a database: a set of tables keyed by
// name. Name labels the snapshot's origin (a file path or host/database) for
// logs and reports. A schema is built once and never mutated afterwards.
type Schema struct {
	Name   string
	Tables map[string]*Table
}

// New returns an empty schema labeled with the given origin.
func New(name string) *Schema {
	return &Schema{Name: name, Tables: make(map[string]*Table)}
}

// Add inserts a table into the schema, rejecting duplicate names.
func (s *Schema) Add(t *Table) error {
	if _, ok := s.Tables[t.Name]; ok {
		return fmt.Errorf("duplicate table %q", t.Name)
	}
	s.Tables[t.Name] = t
	return nil
}

// TableNames returns all table names in sorted order.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns a one-line description of the schema for logs.
func (s *Schema) Summary() string {
	var cols, cons int
	for _, t := range s.Tables {
		cols += len(t.Columns)
		cons += len(t.Constraints)
	}
	return fmt.Sprintf("%d tables, %d columns, %d constraints", len(s.Tables), cols, cons)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
