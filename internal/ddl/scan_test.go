package ddl

import (
	"reflect"
	"testing"
)

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "a, b, c", []string{"a", "b", "c"}},
		{"single", "a", []string{"a"}},
		{"nested parens", "`price` decimal(10,2), `qty` int", []string{"`price` decimal(10,2)", "`qty` int"}},
		{"deeply nested", "a(b(c,d),e), f", []string{"a(b(c,d),e)", "f"}},
		{"comma in single quotes", "`note` varchar(50) COMMENT 'a, b', `x` int", []string{"`note` varchar(50) COMMENT 'a, b'", "`x` int"}},
		{"comma in double quotes", `a "x, y", b`, []string{`a "x, y"`, "b"}},
		{"escaped quote inside", "`c` varchar(9) DEFAULT 'it''s, ok', `d` int", []string{"`c` varchar(9) DEFAULT 'it''s, ok'", "`d` int"}},
		{"paren inside quotes", "`c` varchar(9) DEFAULT '(', `d` int", []string{"`c` varchar(9) DEFAULT '('", "`d` int"}},
		{"key column list", "PRIMARY KEY (`a`,`b`), KEY `k` (`c`)", []string{"PRIMARY KEY (`a`,`b`)", "KEY `k` (`c`)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitTopLevel(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitTopLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatchParen(t *testing.T) {
	tests := []struct {
		name string
		in   string
		open int
		want int
	}{
		{"simple", "(abc)", 0, 4},
		{"nested", "(a(b)c)", 0, 6},
		{"paren in quotes", "(a')'b)", 0, 6},
		{"unbalanced", "(abc", 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchParen(tt.in, tt.open); got != tt.want {
				t.Errorf("matchParen(%q, %d) = %d, want %d", tt.in, tt.open, got, tt.want)
			}
		})
	}
}

func TestScanStatements(t *testing.T) {
	t.Run("splits on semicolons", func(t *testing.T) {
		got := scanStatements("SET NAMES utf8;\nCREATE TABLE `a` (`x` int);\n")
		if len(got) != 2 {
			t.Fatalf("expected 2 statements, got %d: %v", len(got), got)
		}
		if got[0] != "SET NAMES utf8" {
			t.Errorf("got %q", got[0])
		}
	})

	t.Run("semicolon inside string", func(t *testing.T) {
		got := scanStatements("CREATE TABLE `a` (`x` varchar(9) DEFAULT 'a;b');")
		if len(got) != 1 {
			t.Fatalf("expected 1 statement, got %d: %v", len(got), got)
		}
	})

	t.Run("comments stripped", func(t *testing.T) {
		text := "-- header comment\n# another\n/*!40101 SET character_set_client = utf8 */;\nCREATE TABLE `a` (`x` int);"
		got := scanStatements(text)
		if len(got) != 1 {
			t.Fatalf("expected 1 statement, got %d: %v", len(got), got)
		}
		if got[0] != "CREATE TABLE `a` (`x` int)" {
			t.Errorf("got %q", got[0])
		}
	})

	t.Run("dashes without space are not a comment", func(t *testing.T) {
		got := scanStatements("SELECT 1--2")
		if len(got) != 1 || got[0] != "SELECT 1--2" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("trailing statement without terminator", func(t *testing.T) {
		got := scanStatements("CREATE TABLE `a` (`x` int)")
		if len(got) != 1 {
			t.Fatalf("expected 1 statement, got %d", len(got))
		}
	})
}

func TestCutKeyword(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		rest, ok := cutKeyword("NOT NULL", "NOT")
		if !ok || rest != "NULL" {
			t.Errorf("got (%q, %v)", rest, ok)
		}
	})

	t.Run("case-insensitive", func(t *testing.T) {
		if _, ok := cutKeyword("engine=InnoDB", "ENGINE"); !ok {
			t.Error("expected match")
		}
	})

	t.Run("equals is a boundary", func(t *testing.T) {
		rest, ok := cutKeyword("ENGINE=InnoDB", "ENGINE")
		if !ok || rest != "=InnoDB" {
			t.Errorf("got (%q, %v)", rest, ok)
		}
	})

	t.Run("no match mid-word", func(t *testing.T) {
		if _, ok := cutKeyword("DEFAULTED x", "DEFAULT"); ok {
			t.Error("DEFAULTED must not match DEFAULT")
		}
	})

	t.Run("keyword at end", func(t *testing.T) {
		rest, ok := cutKeyword("UNSIGNED", "UNSIGNED")
		if !ok || rest != "" {
			t.Errorf("got (%q, %v)", rest, ok)
		}
	})
}

func TestCutKeywords(t *testing.T) {
	rest, ok := cutKeywords("NOT   NULL DEFAULT 1", "NOT", "NULL")
	if !ok || rest != "DEFAULT 1" {
		t.Errorf("got (%q, %v)", rest, ok)
	}

	if _, ok := cutKeywords("NOT SO NULL", "NOT", "NULL"); ok {
		t.Error("expected no match")
	}
}

func TestTakeIdent(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		ident   string
		rest    string
		wantErr bool
	}{
		{"backticked", "`users` (", "users", "(", false},
		{"bare", "users (", "users", "(", false},
		{"escaped backtick", "`we``ird` x", "we`ird", "x", false},
		{"empty", "", "", "", true},
		{"unterminated", "`oops", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident, rest, err := takeIdent(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ident != tt.ident || rest != tt.rest {
				t.Errorf("takeIdent(%q) = (%q, %q), want (%q, %q)", tt.in, ident, rest, tt.ident, tt.rest)
			}
		})
	}
}

func TestTakeLiteral(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		lit     string
		rest    string
		wantErr bool
	}{
		{"quoted", "'active' NOT NULL", "'active'", "NOT NULL", false},
		{"quoted with escape", "'it''s' x", "'it''s'", "x", false},
		{"bare number", "0 NOT NULL", "0", "NOT NULL", false},
		{"bare keyword", "NULL", "NULL", "", false},
		{"function call", "CURRENT_TIMESTAMP(3) x", "CURRENT_TIMESTAMP(3)", "x", false},
		{"parenthesized", "(uuid()) x", "(uuid())", "x", false},
		{"empty", "", "", "", true},
		{"unterminated string", "'oops", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit, rest, err := takeLiteral(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if lit != tt.lit || rest != tt.rest {
				t.Errorf("takeLiteral(%q) = (%q, %q), want (%q, %q)", tt.in, lit, rest, tt.lit, tt.rest)
			}
		})
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"'plain'", "plain", false},
		{"'it''s'", "it's", false},
		{`'a\'b'`, "a'b", false},
		{`'keep \n raw'`, `keep \n raw`, false},
		{`"double"`, "double", false},
		{"bare", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := unquote(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("unquote(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
