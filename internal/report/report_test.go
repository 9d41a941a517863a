package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/sqldrift/sqldrift/internal/diff"
	"github.com/sqldrift/sqldrift/internal/schema"
)

func sampleDiff() *diff.SchemaDiff {
	return &diff.SchemaDiff{
		Created: []*schema.Table{{Name: "audit_log"}},
		Dropped: []*schema.Table{{Name: "legacy_sessions"}},
		Altered: []*diff.TableDiff{
			{
				Name:            "users",
				AddedColumns:    []*schema.Column{{Name: "email"}},
				ModifiedColumns: []*schema.Column{{Name: "age"}, {Name: "name"}},
				AddedConstraints: []*schema.Constraint{
					{Kind: schema.UniqueKey, Name: "email_idx"},
				},
				Options: &schema.TableOptions{Engine: "InnoDB"},
			},
		},
	}
}

func TestGenerate(t *testing.T) {
	r := Generate(
		"file", "./new.sql", 12,
		"db", "root@prod-db:3306~shop", 11,
		sampleDiff(),
	)

	if r.Version != "1" {
		t.Errorf("expected version 1, got %s", r.Version)
	}
	if r.InSync {
		t.Error("diff has changes, should not be in sync")
	}
	if r.Changes.Create != 1 || r.Changes.Drop != 1 || r.Changes.Alter != 1 {
		t.Errorf("unexpected change counts: %+v", r.Changes)
	}
	if len(r.Tables) != 3 {
		t.Fatalf("expected 3 table entries, got %d", len(r.Tables))
	}
	if r.Tables[0].Name != "audit_log" || r.Tables[0].Change != "create" {
		t.Errorf("unexpected first entry: %+v", r.Tables[0])
	}

	users := r.Tables[2]
	if users.Change != "alter" {
		t.Fatalf("expected alter entry, got %+v", users)
	}
	joined := strings.Join(users.Details, "; ")
	for _, want := range []string{"+1 column", "~2 columns", "+1 constraint", "table options"} {
		if !strings.Contains(joined, want) {
			t.Errorf("details missing %q: %s", want, joined)
		}
	}
}

func TestGenerateInSync(t *testing.T) {
	r := Generate("file", "a.sql", 3, "file", "b.sql", 3, &diff.SchemaDiff{})
	if !r.InSync {
		t.Error("empty diff should be in sync")
	}
	if len(r.Tables) != 0 {
		t.Errorf("expected no table entries, got %d", len(r.Tables))
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "report.json")

	r := Generate(
		"file", "./new.sql", 12,
		"db", "root@prod-db:3306~shop", 11,
		sampleDiff(),
	)

	if err := WriteJSON(r, path); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	loaded, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if loaded.Version != "1" {
		t.Errorf("expected version 1, got %s", loaded.Version)
	}
	if loaded.Source.Name != "./new.sql" {
		t.Errorf("unexpected source name: %s", loaded.Source.Name)
	}
	if loaded.Target.Tables != 11 {
		t.Errorf("expected 11 target tables, got %d", loaded.Target.Tables)
	}
	if loaded.Changes.Alter != 1 {
		t.Errorf("expected 1 alter, got %d", loaded.Changes.Alter)
	}
	if loaded.InSync {
		t.Error("should not be in sync")
	}
}

func TestFormatText(t *testing.T) {
	r := Generate(
		"file", "./new.sql", 12,
		"db", "root@prod-db:3306~shop", 11,
		sampleDiff(),
	)

	text := FormatText(r)
	if !strings.Contains(text, "Schema Drift Report") {
		t.Error("should contain title")
	}
	if !strings.Contains(text, "root@prod-db:3306~shop") {
		t.Error("should contain target name")
	}
	if !strings.Contains(text, "[CREATE] audit_log") {
		t.Error("should list created table")
	}
	if !strings.Contains(text, "[ALTER] users (+1 column") {
		t.Error("should list altered table with details")
	}
}

func TestFormatTextInSync(t *testing.T) {
	r := Generate("file", "a.sql", 3, "file", "b.sql", 3, &diff.SchemaDiff{})

	text := FormatText(r)
	if !strings.Contains(text, "Schemas are in sync.") {
		t.Error("should report schemas in sync")
	}
	if strings.Contains(text, "Changes:") {
		t.Error("in-sync report should not list changes")
	}
}

func TestWriteText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")

	r := Generate("file", "a.sql", 1, "file", "b.sql", 1, &diff.SchemaDiff{})
	if err := WriteText(r, path); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
}
