// Package sqlgen renders a schema diff as executable DDL. Output is
// deterministic: statements are sorted by table name and every clause has a
// fixed position, so identical inputs always produce byte-identical scripts.
package sqlgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sqldrift/sqldrift/internal/diff"
	"github.com/sqldrift/sqldrift/internal/schema"
)

// Statement is one emitted migration statement, without its terminating
// semicolon.
type Statement struct {
	Table string
	SQL   string
}

// Render turns a schema diff into the ordered list of migration statements:
// one CREATE, DROP, or ALTER per affected table, sorted by table name.
func Render(d *diff.SchemaDiff) []Statement {
	stmts := make([]Statement, 0, d.Tables())
	for _, t := range d.Created {
		stmts = append(stmts, Statement{Table: t.Name, SQL: CreateTable(t)})
	}
	for _, t := range d.Dropped {
		stmts = append(stmts, Statement{Table: t.Name, SQL: DropTable(t.Name)})
	}
	for _, td := range d.Altered {
		stmts = append(stmts, Statement{Table: td.Name, SQL: AlterTable(td)})
	}
	sort.Slice(stmts, func(i, j int) bool { return stmts[i].Table < stmts[j].Table })
	return stmts
}

// Script assembles the final migration file: the fixed charset header, then
// each statement under a comment naming its table.
func Script(stmts []Statement) string {
	var b strings.Builder
	b.WriteString("-- set default character\nSET NAMES utf8;\n\n")
	for _, s := range stmts {
		fmt.Fprintf(&b, "-- %s\n%s;\n\n", s.Table, s.SQL)
	}
	return b.String()
}

// CreateTable renders a table model back to canonical CREATE TABLE DDL, the
// form SHOW CREATE TABLE emits: one column per line, then the primary key,
// then the remaining keys, then foreign keys, then table options. Parsing
// the result yields the same model back.
func CreateTable(t *schema.Table) string {
	lines := make([]string, 0, len(t.Columns)+len(t.Constraints))
	for _, c := range t.Columns {
		lines = append(lines, columnDef(c))
	}
	if pk := t.PrimaryKey(); pk != nil {
		lines = append(lines, constraintDef(pk))
	}
	for _, c := range t.Constraints {
		if c.Kind != schema.PrimaryKey && c.Kind != schema.ForeignKey {
			lines = append(lines, constraintDef(c))
		}
	}
	for _, c := range t.Constraints {
		if c.Kind == schema.ForeignKey {
			lines = append(lines, constraintDef(c))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n  %s\n)", quoteIdent(t.Name), strings.Join(lines, ",\n  "))
	b.WriteString(" ENGINE=" + t.Options.Engine)
	if t.Options.Charset != "" {
		b.WriteString(" DEFAULT CHARSET=" + t.Options.Charset)
	}
	if t.Options.Collate != "" {
		b.WriteString(" COLLATE=" + t.Options.Collate)
	}
	return b.String()
}

// DropTable renders the statement removing a table.
func DropTable(name string) string {
	return "DROP TABLE " + quoteIdent(name)
}

// AlterTable renders a table's change set as a single ALTER TABLE statement.
// Clauses take a fixed order so that drops of keys and foreign keys land
// before the columns they cover are dropped or redefined, and additions that
// need a column come after it exists: foreign key drops, then key drops,
// then the primary key drop, column drops, column adds, column modifies,
// the primary key add, key adds, foreign key adds, and finally table
// options.
func AlterTable(td *diff.TableDiff) string {
	var clauses []string

	for _, c := range td.RemovedConstraints {
		if c.Kind == schema.ForeignKey {
			clauses = append(clauses, "DROP FOREIGN KEY "+quoteIdent(c.Name))
		}
	}
	for _, c := range td.RemovedConstraints {
		if c.Kind == schema.UniqueKey || c.Kind == schema.Key || c.Kind == schema.FullTextKey {
			clauses = append(clauses, "DROP INDEX "+quoteIdent(c.Name))
		}
	}
	for _, c := range td.RemovedConstraints {
		if c.Kind == schema.PrimaryKey {
			clauses = append(clauses, "DROP PRIMARY KEY")
		}
	}
	for _, c := range td.RemovedColumns {
		clauses = append(clauses, "DROP COLUMN "+quoteIdent(c.Name))
	}
	for _, c := range td.AddedColumns {
		clauses = append(clauses, "ADD COLUMN "+columnDef(c))
	}
	for _, c := range td.ModifiedColumns {
		clauses = append(clauses, "MODIFY COLUMN "+columnDef(c))
	}
	for _, c := range td.AddedConstraints {
		if c.Kind == schema.PrimaryKey {
			clauses = append(clauses, "ADD "+constraintDef(c))
		}
	}
	for _, c := range td.AddedConstraints {
		if c.Kind == schema.UniqueKey || c.Kind == schema.Key || c.Kind == schema.FullTextKey {
			clauses = append(clauses, "ADD "+constraintDef(c))
		}
	}
	for _, c := range td.AddedConstraints {
		if c.Kind == schema.ForeignKey {
			clauses = append(clauses, "ADD "+constraintDef(c))
		}
	}
	if o := td.Options; o != nil {
		var parts []string
		if o.Engine != "" {
			parts = append(parts, "ENGINE="+o.Engine)
		}
		if o.Charset != "" {
			parts = append(parts, "DEFAULT CHARSET="+o.Charset)
		}
		if o.Collate != "" {
			parts = append(parts, "COLLATE="+o.Collate)
		}
		clauses = append(clauses, strings.Join(parts, " "))
	}

	return "ALTER TABLE " + quoteIdent(td.Name) + "\n" + strings.Join(clauses, ",\n")
}

// columnDef renders one column definition, attributes in SHOW CREATE TABLE
// order.
func columnDef(c *schema.Column) string {
	var b strings.Builder
	b.WriteString(quoteIdent(c.Name) + " " + c.Type.String())
	if c.Charset != "" {
		b.WriteString(" CHARACTER SET " + c.Charset)
	}
	if c.Collate != "" {
		b.WriteString(" COLLATE " + c.Collate)
	}
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		b.WriteString(" DEFAULT " + *c.Default)
	}
	if c.OnUpdate != nil {
		b.WriteString(" ON UPDATE " + *c.OnUpdate)
	}
	if c.AutoIncrement {
		b.WriteString(" AUTO_INCREMENT")
	}
	if c.Comment != "" {
		b.WriteString(" COMMENT " + quoteString(c.Comment))
	}
	return b.String()
}

// constraintDef renders one key or foreign key definition as it appears in a
// CREATE TABLE body.
func constraintDef(c *schema.Constraint) string {
	switch c.Kind {
	case schema.PrimaryKey:
		return "PRIMARY KEY " + keyColumns(c.Columns)
	case schema.ForeignKey:
		var b strings.Builder
		b.WriteString("CONSTRAINT " + quoteIdent(c.Name) + " FOREIGN KEY " + keyColumns(c.Columns))
		b.WriteString(" REFERENCES " + quoteIdent(c.RefTable) + " (")
		for i, rc := range c.RefColumns {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(quoteIdent(rc))
		}
		b.WriteString(")")
		if c.OnDelete != "" {
			b.WriteString(" ON DELETE " + c.OnDelete)
		}
		if c.OnUpdate != "" {
			b.WriteString(" ON UPDATE " + c.OnUpdate)
		}
		return b.String()
	default:
		return string(c.Kind) + " " + quoteIdent(c.Name) + " " + keyColumns(c.Columns)
	}
}

func keyColumns(cols []schema.IndexColumn) string {
	var b strings.Builder
	b.WriteString("(")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(quoteIdent(c.Name))
		if c.SubPart > 0 {
			fmt.Fprintf(&b, "(%d)", c.SubPart)
		}
	}
	b.WriteString(")")
	return b.String()
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
