package lang

import "regexp"

// rulePatterns mirrors simpleLexer's rule list (lexer.go) so a lex failure
// can be pinpointed to an exact line/column independent of how participle
// itself formats the underlying error.
var rulePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:[ \t\r\n]+)`),
	regexp.MustCompile(`^(?:(#|//)[^\n]*)`),
	regexp.MustCompile(`(?s)^(?:/\*.*?\*/)`),
	regexp.MustCompile(`^(?:"([^"\\]|\\.)*")`),
	regexp.MustCompile(`^(?:\d+(\.\d+)?)`),
	regexp.MustCompile(`^(?:[A-Za-z][A-Za-z0-9+.-]*://[^\s\]}),]*|(\.\.?/|/)[A-Za-z0-9_~./-]*|[A-Za-z0-9_~-]+([./][A-Za-z0-9_~-]+)+)`),
	regexp.MustCompile(`^(?:==)`),
	regexp.MustCompile(`^(?:!=)`),
	regexp.MustCompile(`^(?:<=)`),
	regexp.MustCompile(`^(?:>=)`),
	regexp.MustCompile(`^(?:&&)`),
	regexp.MustCompile(`^(?:\|\|)`),
	regexp.MustCompile(`^(?:<)`),
	regexp.MustCompile(`^(?:>)`),
	regexp.MustCompile(`^(?:!)`),
	regexp.MustCompile(`^(?:\[)`),
	regexp.MustCompile(`^(?:\])`),
	regexp.MustCompile(`^(?:\{)`),
	regexp.MustCompile(`^(?:\})`),
	regexp.MustCompile(`^(?:\()`),
	regexp.MustCompile(`^(?:\))`),
	regexp.MustCompile(`^(?:,)`),
	regexp.MustCompile(`^(?:@)`),
	regexp.MustCompile(`^(?::)`),
	regexp.MustCompile(`^(?:\+)`),
	regexp.MustCompile(`^(?:-)`),
	regexp.MustCompile(`^(?:\*)`),
	regexp.MustCompile(`^(?:/)`),
	regexp.MustCompile(`^(?:%)`),
	regexp.MustCompile(`^(?:\.)`),
	regexp.MustCompile(`^(?:[A-Za-z_][A-Za-z0-9_]*)`),
}

// findUnmatchedPosition scans src with the same rule set (and priority
// order) as the real lexer and returns the 1-based line/column of the
// first byte no rule can consume — the site of an E_PARSE_UNEXPECTED_CHAR.
func findUnmatchedPosition(src string) (line, col int, ch byte, ok bool) {
	line, col = 1, 1
	i := 0
	for i < len(src) {
		matched := false
		for _, re := range rulePatterns {
			loc := re.FindStringIndex(src[i:])
			if loc != nil && loc[0] == 0 && loc[1] > 0 {
				for _, b := range src[i : i+loc[1]] {
					if b == '\n' {
						line++
						col = 1
					} else {
						col++
					}
				}
				i += loc[1]
				matched = true
				break
			}
		}
		if !matched {
			return line, col, src[i], true
		}
	}
	return 0, 0, 0, false
}
