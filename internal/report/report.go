package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sqldrift/sqldrift/internal/diff"
)

// Report summarizes one comparison run: where both schemas came from and
// what has to change for the target to match the source.
type Report struct {
	Version     string        `json:"version"`
	GeneratedAt time.Time     `json:"generated_at"`
	Source      SideSummary   `json:"source"`
	Target      SideSummary   `json:"target"`
	Changes     ChangeSummary `json:"changes"`
	Tables      []TableChange `json:"tables,omitempty"`
	InSync      bool          `json:"in_sync"`
}

// SideSummary describes one side of the comparison. Name is a file path or
// a redacted connection string, never credentials.
type SideSummary struct {
	Mode   string `json:"mode"`
	Name   string `json:"name"`
	Tables int    `json:"tables"`
}

// ChangeSummary counts statements by kind.
type ChangeSummary struct {
	Create int `json:"create"`
	Drop   int `json:"drop"`
	Alter  int `json:"alter"`
}

// TableChange is one table's entry in the migration.
type TableChange struct {
	Name    string   `json:"name"`
	Change  string   `json:"change"` // create, drop, alter
	Details []string `json:"details,omitempty"`
}

// Generate creates a Report from the computed diff.
func Generate(
	sourceMode, sourceName string, sourceTables int,
	targetMode, targetName string, targetTables int,
	d *diff.SchemaDiff,
) *Report {
	r := &Report{
		Version:     "1",
		GeneratedAt: time.Now(),
		Source: SideSummary{
			Mode:   sourceMode,
			Name:   sourceName,
			Tables: sourceTables,
		},
		Target: SideSummary{
			Mode:   targetMode,
			Name:   targetName,
			Tables: targetTables,
		},
		Changes: ChangeSummary{
			Create: len(d.Created),
			Drop:   len(d.Dropped),
			Alter:  len(d.Altered),
		},
		InSync: d.Empty(),
	}

	for _, t := range d.Created {
		r.Tables = append(r.Tables, TableChange{Name: t.Name, Change: "create"})
	}
	for _, t := range d.Dropped {
		r.Tables = append(r.Tables, TableChange{Name: t.Name, Change: "drop"})
	}
	for _, td := range d.Altered {
		r.Tables = append(r.Tables, TableChange{
			Name:    td.Name,
			Change:  "alter",
			Details: alterDetails(td),
		})
	}

	return r
}

func alterDetails(td *diff.TableDiff) []string {
	var details []string
	if n := len(td.AddedColumns); n > 0 {
		details = append(details, fmt.Sprintf("+%d %s", n, plural(n, "column")))
	}
	if n := len(td.RemovedColumns); n > 0 {
		details = append(details, fmt.Sprintf("-%d %s", n, plural(n, "column")))
	}
	if n := len(td.ModifiedColumns); n > 0 {
		details = append(details, fmt.Sprintf("~%d %s", n, plural(n, "column")))
	}
	if n := len(td.AddedConstraints); n > 0 {
		details = append(details, fmt.Sprintf("+%d %s", n, plural(n, "constraint")))
	}
	if n := len(td.RemovedConstraints); n > 0 {
		details = append(details, fmt.Sprintf("-%d %s", n, plural(n, "constraint")))
	}
	if td.Options != nil {
		details = append(details, "table options")
	}
	return details
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// WriteJSON writes the report as JSON.
func WriteJSON(r *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON reads a report from a JSON file.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	r := &Report{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return r, nil
}

// WriteText writes the report as human-readable text.
func WriteText(r *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	return os.WriteFile(path, []byte(FormatText(r)), 0o644)
}

// FormatText renders the report as human-readable text.
func FormatText(r *Report) string {
	var b strings.Builder

	b.WriteString("=== Schema Drift Report ===\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	b.WriteString("Source:\n")
	b.WriteString(fmt.Sprintf("  Mode:   %s\n", r.Source.Mode))
	b.WriteString(fmt.Sprintf("  Name:   %s\n", r.Source.Name))
	b.WriteString(fmt.Sprintf("  Tables: %d\n\n", r.Source.Tables))

	b.WriteString("Target:\n")
	b.WriteString(fmt.Sprintf("  Mode:   %s\n", r.Target.Mode))
	b.WriteString(fmt.Sprintf("  Name:   %s\n", r.Target.Name))
	b.WriteString(fmt.Sprintf("  Tables: %d\n\n", r.Target.Tables))

	if r.InSync {
		b.WriteString("Schemas are in sync.\n")
		return b.String()
	}

	b.WriteString("Changes:\n")
	b.WriteString(fmt.Sprintf("  Create: %d\n", r.Changes.Create))
	b.WriteString(fmt.Sprintf("  Drop:   %d\n", r.Changes.Drop))
	b.WriteString(fmt.Sprintf("  Alter:  %d\n\n", r.Changes.Alter))

	b.WriteString("Tables:\n")
	for _, tc := range r.Tables {
		line := fmt.Sprintf("  [%s] %s", strings.ToUpper(tc.Change), tc.Name)
		if len(tc.Details) > 0 {
			line += fmt.Sprintf(" (%s)", strings.Join(tc.Details, ", "))
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}
