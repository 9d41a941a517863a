package ddl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sqldrift/sqldrift/internal/schema"
)

// ParseDump extracts the CREATE TABLE statements from SQL dump text. All
// other statements (SET, INSERT, LOCK TABLES, view and procedure
// definitions) are skipped; only base tables participate in a comparison.
func ParseDump(text string) []string {
	var ddls []string
	for _, stmt := range scanStatements(text) {
		if hasKeywords(stmt, "CREATE", "TABLE") {
			ddls = append(ddls, stmt)
		}
	}
	return ddls
}

// ParseCreateTable parses one raw CREATE TABLE statement into a Table.
// Parsing is pattern-based over a nesting-aware split of the definition
// body: each top-level item is classified as a column or a constraint and
// dispatched to the matching parser. Any fragment that fits no recognized
// form fails the whole statement; no partial table is ever produced.
func ParseCreateTable(stmt string) (*schema.Table, error) {
	rest, ok := cutKeywords(strings.TrimSpace(stmt), "CREATE", "TABLE")
	if !ok {
		return nil, &ParseError{Fragment: snippet(stmt), Reason: "not a CREATE TABLE statement"}
	}
	if r, ok := cutKeywords(rest, "IF", "NOT", "EXISTS"); ok {
		rest = r
	}
	name, rest, err := takeIdent(rest)
	if err != nil {
		return nil, &ParseError{Fragment: snippet(rest), Reason: "missing table name"}
	}

	if rest == "" || rest[0] != '(' {
		return nil, &ParseError{Table: name, Fragment: snippet(rest), Reason: "missing column list"}
	}
	end := matchParen(rest, 0)
	if end < 0 {
		return nil, &ParseError{Table: name, Fragment: snippet(rest), Reason: "unbalanced parentheses"}
	}
	body, tail := rest[1:end], rest[end+1:]

	t := &schema.Table{Name: name}
	for _, item := range splitTopLevel(body) {
		if err := parseItem(t, item); err != nil {
			return nil, tagTable(err, name)
		}
	}
	if err := parseOptions(t, tail); err != nil {
		return nil, tagTable(err, name)
	}

	// InnoDB only; the server default applies when the DDL names no engine.
	if t.Options.Engine == "" {
		t.Options.Engine = "InnoDB"
	}
	if !strings.EqualFold(t.Options.Engine, "InnoDB") {
		return nil, &UnsupportedFeatureError{Table: name, Feature: "storage engine " + t.Options.Engine}
	}
	t.Options.Engine = "InnoDB"

	nameForeignKeys(t)
	for i, c := range t.Columns {
		c.Position = i + 1
	}
	if err := t.Validate(); err != nil {
		return nil, &ParseError{Table: name, Reason: err.Error()}
	}
	return t, nil
}

// parseItem classifies one top-level definition item and dispatches it.
// Columns are recognized by their backtick-quoted leading identifier, the
// form every dump writes; everything else must begin with a constraint
// keyword.
func parseItem(t *schema.Table, item string) error {
	switch {
	case item == "":
		return &ParseError{Reason: "empty definition item"}
	case item[0] == '`':
		return parseColumn(t, item)
	case hasKeywords(item, "PRIMARY", "KEY"):
		rest, _ := cutKeywords(item, "PRIMARY", "KEY")
		return parsePrimaryKey(t, rest)
	case hasKeywords(item, "UNIQUE"):
		rest, _ := cutKeyword(item, "UNIQUE")
		rest = cutIndexKeyword(rest)
		return parseIndexKey(t, schema.UniqueKey, "", rest)
	case hasKeywords(item, "FULLTEXT"):
		rest, _ := cutKeyword(item, "FULLTEXT")
		rest = cutIndexKeyword(rest)
		return parseIndexKey(t, schema.FullTextKey, "", rest)
	case hasKeywords(item, "KEY"), hasKeywords(item, "INDEX"):
		rest, ok := cutKeyword(item, "KEY")
		if !ok {
			rest, _ = cutKeyword(item, "INDEX")
		}
		return parseIndexKey(t, schema.Key, "", rest)
	case hasKeywords(item, "CONSTRAINT"):
		return parseConstraint(t, item)
	case hasKeywords(item, "FOREIGN", "KEY"):
		rest, _ := cutKeywords(item, "FOREIGN", "KEY")
		return parseForeignKey(t, "", rest)
	case hasKeywords(item, "SPATIAL"):
		return &UnsupportedFeatureError{Feature: "SPATIAL index"}
	case hasKeywords(item, "CHECK"):
		return &UnsupportedFeatureError{Feature: "CHECK constraint"}
	default:
		return &ParseError{Fragment: snippet(item), Reason: "unrecognized table definition item"}
	}
}

// cutIndexKeyword strips an optional KEY or INDEX noise word.
func cutIndexKeyword(s string) string {
	if r, ok := cutKeyword(s, "KEY"); ok {
		return r
	}
	if r, ok := cutKeyword(s, "INDEX"); ok {
		return r
	}
	return s
}

func parseColumn(t *schema.Table, item string) error {
	name, rest, err := takeIdent(item)
	if err != nil {
		return &ParseError{Fragment: snippet(item), Reason: "invalid column name"}
	}
	typeName, rest, err := takeIdent(rest)
	if err != nil {
		return &ParseError{Fragment: snippet(item), Reason: "missing column type"}
	}

	col := &schema.Column{Name: name, Type: schema.ColumnType{Name: typeName}, Nullable: true}
	if rest != "" && rest[0] == '(' {
		end := matchParen(rest, 0)
		if end < 0 {
			return &ParseError{Fragment: snippet(item), Reason: "unbalanced type parameters"}
		}
		col.Type.Params = splitTopLevel(rest[1:end])
		rest = strings.TrimLeft(rest[end+1:], " \t\n\r")
	}

	var inlinePK, inlineUnique bool
	for rest != "" {
		if r, ok := cutKeyword(rest, "UNSIGNED"); ok {
			col.Type.Unsigned = true
			rest = r
			continue
		}
		if r, ok := cutKeywords(rest, "NOT", "NULL"); ok {
			col.Nullable = false
			rest = r
			continue
		}
		if r, ok := cutKeyword(rest, "NULL"); ok {
			col.Nullable = true
			rest = r
			continue
		}
		if r, ok := cutKeyword(rest, "DEFAULT"); ok {
			lit, r, err := takeLiteral(r)
			if err != nil {
				return &ParseError{Fragment: snippet(item), Reason: "invalid default value: " + err.Error()}
			}
			lit = normalizeLiteral(lit)
			col.Default = &lit
			rest = r
			continue
		}
		if r, ok := cutKeywords(rest, "ON", "UPDATE"); ok {
			lit, r, err := takeLiteral(r)
			if err != nil {
				return &ParseError{Fragment: snippet(item), Reason: "invalid ON UPDATE expression: " + err.Error()}
			}
			lit = normalizeLiteral(lit)
			col.OnUpdate = &lit
			rest = r
			continue
		}
		if r, ok := cutKeyword(rest, "AUTO_INCREMENT"); ok {
			col.AutoIncrement = true
			rest = r
			continue
		}
		if r, ok := cutKeyword(rest, "COMMENT"); ok {
			lit, r, err := takeLiteral(r)
			if err != nil {
				return &ParseError{Fragment: snippet(item), Reason: "invalid comment: " + err.Error()}
			}
			text, err := unquote(lit)
			if err != nil {
				return &ParseError{Fragment: snippet(lit), Reason: "column comment must be a quoted string"}
			}
			col.Comment = text
			rest = r
			continue
		}
		if r, ok := cutKeywords(rest, "CHARACTER", "SET"); ok {
			col.Charset, rest, err = takeIdent(r)
			if err != nil {
				return &ParseError{Fragment: snippet(item), Reason: "invalid character set"}
			}
			continue
		}
		if r, ok := cutKeyword(rest, "CHARSET"); ok {
			col.Charset, rest, err = takeIdent(r)
			if err != nil {
				return &ParseError{Fragment: snippet(item), Reason: "invalid character set"}
			}
			continue
		}
		if r, ok := cutKeyword(rest, "COLLATE"); ok {
			col.Collate, rest, err = takeIdent(r)
			if err != nil {
				return &ParseError{Fragment: snippet(item), Reason: "invalid collation"}
			}
			continue
		}
		if r, ok := cutKeywords(rest, "PRIMARY", "KEY"); ok {
			inlinePK = true
			rest = r
			continue
		}
		if r, ok := cutKeyword(rest, "UNIQUE"); ok {
			inlineUnique = true
			rest = cutIndexKeyword(r)
			continue
		}
		if r, ok := cutKeyword(rest, "KEY"); ok {
			// a bare KEY attribute on a column declares the primary key
			inlinePK = true
			rest = r
			continue
		}
		return &ParseError{Fragment: snippet(rest), Reason: "unrecognized column attribute"}
	}

	t.Columns = append(t.Columns, col)
	if inlinePK {
		t.Constraints = append(t.Constraints, &schema.Constraint{
			Kind:    schema.PrimaryKey,
			Columns: []schema.IndexColumn{{Name: col.Name}},
		})
	}
	if inlineUnique {
		t.Constraints = append(t.Constraints, &schema.Constraint{
			Kind:    schema.UniqueKey,
			Name:    col.Name,
			Columns: []schema.IndexColumn{{Name: col.Name}},
		})
	}
	return nil
}

// normalizeLiteral uppercases bare keyword literals (NULL,
// CURRENT_TIMESTAMP) so dumps written by hand compare equal to server
// output. Quoted strings and anything containing quotes stay untouched.
func normalizeLiteral(lit string) string {
	if lit == "" || lit[0] == '\'' || lit[0] == '"' || lit[0] == '(' {
		return lit
	}
	if strings.ContainsAny(lit, `'"`) {
		return lit // bit or hex literal such as b'1'
	}
	if c := lit[0]; c >= '0' && c <= '9' || c == '-' || c == '+' || c == '.' {
		return lit
	}
	return strings.ToUpper(lit)
}

func parsePrimaryKey(t *schema.Table, rest string) error {
	cols, rest, err := parseKeyColumns(rest)
	if err != nil {
		return err
	}
	rest, err = cutIndexMethod(rest)
	if err != nil {
		return err
	}
	if rest != "" {
		return &ParseError{Fragment: snippet(rest), Reason: "unexpected text after primary key"}
	}
	t.Constraints = append(t.Constraints, &schema.Constraint{Kind: schema.PrimaryKey, Columns: cols})
	return nil
}

func parseIndexKey(t *schema.Table, kind schema.ConstraintKind, name, rest string) error {
	if name == "" && rest != "" && rest[0] != '(' {
		n, r, err := takeIdent(rest)
		if err != nil {
			return &ParseError{Fragment: snippet(rest), Reason: "invalid index name"}
		}
		name, rest = n, r
	}
	cols, rest, err := parseKeyColumns(rest)
	if err != nil {
		return err
	}
	rest, err = cutIndexMethod(rest)
	if err != nil {
		return err
	}
	if rest != "" {
		return &ParseError{Fragment: snippet(rest), Reason: "unexpected text after index definition"}
	}
	if name == "" {
		// the server names an unnamed key after its first column
		name = cols[0].Name
	}
	t.Constraints = append(t.Constraints, &schema.Constraint{Kind: kind, Name: name, Columns: cols})
	return nil
}

// cutIndexMethod discards a trailing USING BTREE/HASH. The index method is a
// storage hint, not structure.
func cutIndexMethod(rest string) (string, error) {
	r, ok := cutKeyword(rest, "USING")
	if !ok {
		return rest, nil
	}
	_, r, err := takeIdent(r)
	if err != nil {
		return "", &ParseError{Fragment: snippet(rest), Reason: "invalid index method"}
	}
	return r, nil
}

func parseKeyColumns(rest string) ([]schema.IndexColumn, string, error) {
	if rest == "" || rest[0] != '(' {
		return nil, "", &ParseError{Fragment: snippet(rest), Reason: "missing key column list"}
	}
	end := matchParen(rest, 0)
	if end < 0 {
		return nil, "", &ParseError{Fragment: snippet(rest), Reason: "unbalanced key column list"}
	}

	var cols []schema.IndexColumn
	for _, part := range splitTopLevel(rest[1:end]) {
		name, r, err := takeIdent(part)
		if err != nil {
			return nil, "", &ParseError{Fragment: snippet(part), Reason: "invalid key column"}
		}
		ic := schema.IndexColumn{Name: name}
		if r != "" && r[0] == '(' {
			pr := matchParen(r, 0)
			if pr < 0 {
				return nil, "", &ParseError{Fragment: snippet(part), Reason: "unbalanced index prefix"}
			}
			n, err := strconv.Atoi(strings.TrimSpace(r[1:pr]))
			if err != nil || n <= 0 {
				return nil, "", &ParseError{Fragment: snippet(part), Reason: "invalid index prefix length"}
			}
			ic.SubPart = n
			r = strings.TrimLeft(r[pr+1:], " \t\n\r")
		}
		if r2, ok := cutKeyword(r, "ASC"); ok {
			r = r2 // ascending is the default ordering
		}
		if hasKeywords(r, "DESC") {
			return nil, "", &UnsupportedFeatureError{Feature: "descending index column"}
		}
		if r != "" {
			return nil, "", &ParseError{Fragment: snippet(part), Reason: "unexpected text in key column"}
		}
		cols = append(cols, ic)
	}
	return cols, strings.TrimLeft(rest[end+1:], " \t\n\r"), nil
}

func parseConstraint(t *schema.Table, item string) error {
	rest, _ := cutKeyword(item, "CONSTRAINT")
	var name string
	if !hasKeywords(rest, "FOREIGN", "KEY") && !hasKeywords(rest, "UNIQUE") &&
		!hasKeywords(rest, "PRIMARY", "KEY") && !hasKeywords(rest, "CHECK") {
		n, r, err := takeIdent(rest)
		if err != nil {
			return &ParseError{Fragment: snippet(item), Reason: "invalid constraint name"}
		}
		name, rest = n, r
	}
	switch {
	case hasKeywords(rest, "FOREIGN", "KEY"):
		rest, _ = cutKeywords(rest, "FOREIGN", "KEY")
		return parseForeignKey(t, name, rest)
	case hasKeywords(rest, "UNIQUE"):
		rest, _ = cutKeyword(rest, "UNIQUE")
		return parseIndexKey(t, schema.UniqueKey, name, cutIndexKeyword(rest))
	case hasKeywords(rest, "PRIMARY", "KEY"):
		// the server discards symbol names on primary keys
		rest, _ = cutKeywords(rest, "PRIMARY", "KEY")
		return parsePrimaryKey(t, rest)
	case hasKeywords(rest, "CHECK"):
		return &UnsupportedFeatureError{Feature: "CHECK constraint"}
	default:
		return &ParseError{Fragment: snippet(item), Reason: "unrecognized constraint"}
	}
}

func parseForeignKey(t *schema.Table, name, rest string) error {
	cols, rest, err := parseKeyColumns(rest)
	if err != nil {
		return err
	}
	rest, ok := cutKeyword(rest, "REFERENCES")
	if !ok {
		return &ParseError{Fragment: snippet(rest), Reason: "foreign key missing REFERENCES"}
	}
	refTable, rest, err := takeIdent(rest)
	if err != nil {
		return &ParseError{Fragment: snippet(rest), Reason: "invalid referenced table"}
	}
	refCols, rest, err := parseKeyColumns(rest)
	if err != nil {
		return err
	}

	fk := &schema.Constraint{Kind: schema.ForeignKey, Name: name, Columns: cols, RefTable: refTable}
	for _, ic := range refCols {
		if ic.SubPart != 0 {
			return &ParseError{Fragment: snippet(ic.Name), Reason: "prefix length not allowed on referenced column"}
		}
		fk.RefColumns = append(fk.RefColumns, ic.Name)
	}

	for rest != "" {
		if r, ok := cutKeywords(rest, "ON", "DELETE"); ok {
			fk.OnDelete, rest, err = parseRefAction(r)
			if err != nil {
				return err
			}
			continue
		}
		if r, ok := cutKeywords(rest, "ON", "UPDATE"); ok {
			fk.OnUpdate, rest, err = parseRefAction(r)
			if err != nil {
				return err
			}
			continue
		}
		return &ParseError{Fragment: snippet(rest), Reason: "unexpected text after foreign key"}
	}
	t.Constraints = append(t.Constraints, fk)
	return nil
}

// parseRefAction consumes one referential action. RESTRICT and NO ACTION are
// the dialect defaults and normalize to the empty string, matching what SHOW
// CREATE TABLE omits.
func parseRefAction(s string) (string, string, error) {
	for _, words := range [][]string{{"CASCADE"}, {"SET", "NULL"}, {"SET", "DEFAULT"}, {"RESTRICT"}, {"NO", "ACTION"}} {
		rest, ok := cutKeywords(s, words...)
		if !ok {
			continue
		}
		action := strings.Join(words, " ")
		if action == "RESTRICT" || action == "NO ACTION" {
			action = ""
		}
		return action, rest, nil
	}
	return "", "", &ParseError{Fragment: snippet(s), Reason: "invalid referential action"}
}

// parseOptions scans the clause after the closing parenthesis. Engine,
// charset, and collation are modeled; counters and storage hints
// (AUTO_INCREMENT, ROW_FORMAT, and friends) are recognized and discarded.
func parseOptions(t *schema.Table, tail string) error {
	ignored := []string{
		"AUTO_INCREMENT", "ROW_FORMAT", "KEY_BLOCK_SIZE", "COMMENT", "CHECKSUM",
		"DELAY_KEY_WRITE", "AVG_ROW_LENGTH", "MAX_ROWS", "MIN_ROWS", "PACK_KEYS",
		"STATS_PERSISTENT", "STATS_AUTO_RECALC", "STATS_SAMPLE_PAGES",
	}

	rest := strings.TrimSuffix(strings.TrimSpace(tail), ";")
	rest = strings.TrimSpace(rest)
scan:
	for rest != "" {
		var err error
		if r, ok := cutKeyword(rest, "ENGINE"); ok {
			t.Options.Engine, rest, err = optionValue(r)
			if err != nil {
				return &ParseError{Fragment: snippet(rest), Reason: "invalid ENGINE value"}
			}
			continue
		}
		if r, ok := cutKeyword(rest, "DEFAULT"); ok {
			rest = r // modifier before CHARSET / CHARACTER SET / COLLATE
			continue
		}
		if r, ok := cutKeywords(rest, "CHARACTER", "SET"); ok {
			t.Options.Charset, rest, err = optionValue(r)
			if err != nil {
				return &ParseError{Fragment: snippet(rest), Reason: "invalid CHARACTER SET value"}
			}
			continue
		}
		if r, ok := cutKeyword(rest, "CHARSET"); ok {
			t.Options.Charset, rest, err = optionValue(r)
			if err != nil {
				return &ParseError{Fragment: snippet(rest), Reason: "invalid CHARSET value"}
			}
			continue
		}
		if r, ok := cutKeyword(rest, "COLLATE"); ok {
			t.Options.Collate, rest, err = optionValue(r)
			if err != nil {
				return &ParseError{Fragment: snippet(rest), Reason: "invalid COLLATE value"}
			}
			continue
		}
		for _, kw := range ignored {
			if r, ok := cutKeyword(rest, kw); ok {
				if _, rest, err = optionValue(r); err != nil {
					return &ParseError{Fragment: snippet(r), Reason: "invalid " + kw + " value"}
				}
				continue scan
			}
		}
		return &ParseError{Fragment: snippet(rest), Reason: "unrecognized table option"}
	}
	return nil
}

// optionValue consumes an option's value, with or without a leading equals
// sign.
func optionValue(s string) (string, string, error) {
	s = strings.TrimLeft(s, " \t\n\r")
	if s != "" && s[0] == '=' {
		s = strings.TrimLeft(s[1:], " \t\n\r")
	}
	return takeLiteral(s)
}

// nameForeignKeys assigns server-style names (table_ibfk_N) to foreign keys
// declared without one.
func nameForeignKeys(t *schema.Table) {
	taken := make(map[string]bool)
	for _, c := range t.Constraints {
		if c.Kind == schema.ForeignKey && c.Name != "" {
			taken[c.Name] = true
		}
	}
	n := 1
	for _, c := range t.Constraints {
		if c.Kind != schema.ForeignKey || c.Name != "" {
			continue
		}
		for {
			name := fmt.Sprintf("%s_ibfk_%d", t.Name, n)
			n++
			if !taken[name] {
				c.Name = name
				taken[name] = true
				break
			}
		}
	}
}

// tagTable fills in the table name on typed errors raised while parsing the
// body, where the name is not in scope.
func tagTable(err error, table string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Table == "" {
		pe.Table = table
	}
	var ue *UnsupportedFeatureError
	if errors.As(err, &ue) && ue.Table == "" {
		ue.Table = table
	}
	return err
}
