package parser

import "strings"

// SplitLine splits a report line on commas and tabs. Field reports mix the
// two delimiters, sometimes within one file. Double quotes are honoured the
// tolerant way: an opening quote only counts at the start of a field, a
// closing quote only before a delimiter or end of line, and "" inside a quoted
// field is a literal quote. Anything else is kept verbatim.
func SplitLine(line string) []string {
	var (
		fields         []string
		sb             strings.Builder
		inQuotes       bool
		atStartOfField = true
	)
	isDelim := func(c byte) bool { return c == ',' || c == '\t' }
	closesAt := func(j int) bool {
		for j < len(line) && line[j] == ' ' {
			j++
		}
		return j >= len(line) || isDelim(line[j])
	}

	for i := 0; i < len(line); {
		ch := line[i]
		switch {
		case isDelim(ch) && !inQuotes:
			fields = append(fields, sb.String())
			sb.Reset()
			atStartOfField = true
			i++
		case ch == '"' && inQuotes:
			if i+1 < len(line) && line[i+1] == '"' {
				sb.WriteByte('"')
				i += 2
				if closesAt(i) {
					inQuotes = false
				}
				continue
			}
			if closesAt(i + 1) {
				inQuotes = false
				i++
				continue
			}
			sb.WriteByte('"')
			i++
		case ch == '"' && atStartOfField:
			inQuotes = true
			atStartOfField = false
			i++
		default:
			sb.WriteByte(ch)
			if ch != ' ' || !atStartOfField {
				atStartOfField = false
			}
			i++
		}
	}
	return append(fields, sb.String())
}
