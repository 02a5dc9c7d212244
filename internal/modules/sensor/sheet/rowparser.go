// Package sheet parses the published-spreadsheet CSV snapshot into readings.
// The source is of unknown cleanliness: fields may be quoted or not, quotes
// may appear mid-field, and decimal separators vary by locale, so rows are
// scanned by a small character automaton instead of encoding/csv.
package sheet

import "strings"

// ParseRow splits one raw line into fields. A double quote toggles quoted
// mode, a comma ends the current field only outside quotes, and "" inside a
// quoted field yields a literal quote. Empty fields are kept so column
// positions stay stable for header-indexed decoding; callers that want to
// tolerate trailing blank columns handle that themselves.
func ParseRow(line string) []string {
	fields := make([]string, 0, 8)
	var buf strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				buf.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, buf.String())
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}

	return append(fields, buf.String())
}

// SplitLines breaks raw snapshot text into rows, dropping blank lines and
// trailing carriage returns. The first returned row is the header.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
