package ddl

import (
	"fmt"
	"strings"
)

// skipQuoted advances past a quoted run starting at s[i] (a single quote,
// double quote, or backtick) and returns the index just after the closing
// quote. Doubled quotes and, outside backticks, backslash escapes are part
// of the run. ok is false when the quote never closes.
func skipQuoted(s string, i int) (int, bool) {
	q := s[i]
	i++
	for i < len(s) {
		c := s[i]
		if c == '\\' && q != '`' && i+1 < len(s) {
			i += 2
			continue
		}
		if c == q {
			if i+1 < len(s) && s[i+1] == q {
				i += 2
				continue
			}
			return i + 1, true
		}
		i++
	}
	return i, false
}

// matchParen returns the index of the parenthesis closing the one at
// s[open], or -1. Parentheses inside quoted runs do not count.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); {
		switch s[i] {
		case '\'', '"', '`':
			i, _ = skipQuoted(s, i)
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// splitTopLevel splits s on commas at parenthesis depth zero. Commas inside
// any nesting level or inside quoted runs never split, so decimal(10,2),
// enum('a','b'), index column lists, and quoted literals containing commas
// all stay intact. Items are returned trimmed.
func splitTopLevel(s string) []string {
	var items []string
	start := 0
	depth := 0
	for i := 0; i < len(s); {
		switch s[i] {
		case '\'', '"', '`':
			i, _ = skipQuoted(s, i)
			continue
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				items = append(items, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
		i++
	}
	return append(items, strings.TrimSpace(s[start:]))
}

// scanStatements splits SQL dump text into complete statements. Line
// comments (-- and #), block comments (including /*! directives), and
// semicolons inside quoted runs are handled; statement terminators are not
// included in the results. A trailing statement without a terminator is
// returned as-is.
func scanStatements(text string) []string {
	var stmts []string
	var buf strings.Builder

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			stmts = append(stmts, s)
		}
		buf.Reset()
	}

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end, _ := skipQuoted(text, i)
			buf.WriteString(text[i:end])
			i = end
		case c == '-' && i+1 < len(text) && text[i+1] == '-' &&
			(i+2 >= len(text) || text[i+2] == ' ' || text[i+2] == '\t' || text[i+2] == '\n' || text[i+2] == '\r'):
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case c == '#':
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				i = len(text)
				break
			}
			i += 2 + end + 2
		case c == ';':
			flush()
			i++
		default:
			buf.WriteByte(c)
			i++
		}
	}
	flush()
	return stmts
}

// isWordBreak reports whether c can follow a keyword.
func isWordBreak(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ',' || c == '='
}

// cutKeyword strips a leading keyword (case-insensitive, at a word boundary)
// and any following whitespace. ok is false when s does not start with it.
func cutKeyword(s, kw string) (string, bool) {
	if len(s) < len(kw) || !strings.EqualFold(s[:len(kw)], kw) {
		return s, false
	}
	rest := s[len(kw):]
	if rest != "" && !isWordBreak(rest[0]) {
		return s, false
	}
	return strings.TrimLeft(rest, " \t\n\r"), true
}

// cutKeywords strips the given keywords in order, tolerating arbitrary
// whitespace between them. ok is false if any keyword is absent.
func cutKeywords(s string, kws ...string) (string, bool) {
	for _, kw := range kws {
		var ok bool
		s, ok = cutKeyword(s, kw)
		if !ok {
			return s, false
		}
	}
	return s, true
}

// hasKeywords reports whether s begins with the given keyword sequence.
func hasKeywords(s string, kws ...string) bool {
	_, ok := cutKeywords(s, kws...)
	return ok
}

// takeIdent consumes a leading identifier, backtick-quoted or bare, and
// returns it with any quoting removed.
func takeIdent(s string) (ident, rest string, err error) {
	if s == "" {
		return "", "", fmt.Errorf("missing identifier")
	}
	if s[0] == '`' {
		end, ok := skipQuoted(s, 0)
		if !ok || end < 2 {
			return "", "", fmt.Errorf("unterminated quoted identifier")
		}
		ident = strings.ReplaceAll(s[1:end-1], "``", "`")
		return ident, strings.TrimLeft(s[end:], " \t\n\r"), nil
	}
	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == 0 {
		return "", "", fmt.Errorf("missing identifier")
	}
	return s[:i], strings.TrimLeft(s[i:], " \t\n\r"), nil
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '$'
}

// takeLiteral consumes a leading literal: a quoted string, a parenthesized
// expression, or a bare token with optional call parentheses (e.g.
// CURRENT_TIMESTAMP(3)). The literal is returned exactly as written.
func takeLiteral(s string) (lit, rest string, err error) {
	if s == "" {
		return "", "", fmt.Errorf("missing literal")
	}
	switch s[0] {
	case '\'', '"':
		end, ok := skipQuoted(s, 0)
		if !ok {
			return "", "", fmt.Errorf("unterminated string literal")
		}
		return s[:end], strings.TrimLeft(s[end:], " \t\n\r"), nil
	case '(':
		end := matchParen(s, 0)
		if end < 0 {
			return "", "", fmt.Errorf("unbalanced parentheses in literal")
		}
		return s[:end+1], strings.TrimLeft(s[end+1:], " \t\n\r"), nil
	default:
		i := 0
		for i < len(s) {
			c := s[i]
			if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
				break
			}
			if c == '(' {
				end := matchParen(s, i)
				if end < 0 {
					return "", "", fmt.Errorf("unbalanced parentheses in literal")
				}
				i = end + 1
				break
			}
			i++
		}
		return s[:i], strings.TrimLeft(s[i:], " \t\n\r"), nil
	}
}

// unquote strips the surrounding quotes from a string literal and collapses
// quote escapes (doubled or backslashed). Other backslash sequences pass
// through untouched; the tool never interprets them.
func unquote(lit string) (string, error) {
	if len(lit) < 2 || (lit[0] != '\'' && lit[0] != '"') || lit[len(lit)-1] != lit[0] {
		return "", fmt.Errorf("not a quoted string: %s", snippet(lit))
	}
	q := lit[0]
	inner := lit[1 : len(lit)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if (c == q || c == '\\') && i+1 < len(inner) && inner[i+1] == q {
			b.WriteByte(q)
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}
