package ddl

import "fmt"

// ParseError reports DDL text that does not match any recognized form. A
// parse failure aborts the whole run: a partially parsed table would corrupt
// the resulting diff.
type ParseError struct {
	Table    string // empty when the table name itself was unreadable
	Fragment string
	Reason   string
}

func (e *ParseError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("parse error: %s (near %q)", e.Reason, e.Fragment)
	}
	return fmt.Sprintf("parse error in table %q: %s (near %q)", e.Table, e.Reason, e.Fragment)
}

// UnsupportedFeatureError reports a construct outside the supported dialect
// subset, such as a storage engine other than InnoDB. Unsupported tables are
// rejected rather than skipped: silently omitting one would produce an
// incomplete migration.
type UnsupportedFeatureError struct {
	Table   string
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("table %q uses unsupported feature: %s", e.Table, e.Feature)
}

// snippet shortens a fragment for error messages.
func snippet(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
