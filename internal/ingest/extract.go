package ingest

import "strings"

// ExtractIdentifier returns the text before the first delim in line, with
// surrounding whitespace and enclosing quote characters removed. A line
// without delim is taken whole.
func ExtractIdentifier(line, delim, quotes string) string {
	if i := strings.Index(line, delim); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if quotes != "" {
		line = strings.Trim(line, quotes)
	}
	return line
}

// SniffLabel returns the display label carried by a header line: its first
// field, unquoted. It has no effect on what gets loaded.
func SniffLabel(header, delim, quotes string) string {
	return ExtractIdentifier(strings.TrimPrefix(header, "\ufeff"), delim, quotes)
}
