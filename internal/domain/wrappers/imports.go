package wrappers

import (
	"regexp"
	"strings"
)

var (
	importStatement = regexp.MustCompile(`^\s*import\s.*\bfrom\s*['"]|^\s*import\s*['"]|^\s*\}\s*from\s*['"]`)
	directiveLine   = regexp.MustCompile(`^\s*(['"])use (server|client|strict)['"];?\s*$`)
)

// InjectImport inserts importLine as a new line and returns the new text.
//
// With a non-empty anchor the line goes right after the first import line
// containing anchor. Otherwise it follows the last import statement, then a
// leading directive prologue (separated by one blank line), and as a last
// resort it is prepended to the file.
func InjectImport(text, importLine, anchor string) string {
	lines := strings.Split(text, "\n")

	if anchor != "" {
		for i, line := range lines {
			if strings.Contains(line, anchor) && importStatement.MatchString(line) {
				return joinInserted(lines, i+1, importLine)
			}
		}
	}

	if idx := lastImportLine(lines); idx >= 0 {
		return joinInserted(lines, idx+1, importLine)
	}

	if idx := directiveIndex(lines); idx >= 0 {
		next := idx + 1
		if next < len(lines) && strings.TrimSpace(lines[next]) == "" {
			return joinInserted(lines, next+1, importLine)
		}

		return joinInserted(lines, next, "", importLine)
	}

	return importLine + "\n" + text
}

func lastImportLine(lines []string) int {
	last := -1

	for i, line := range lines {
		if importStatement.MatchString(line) {
			last = i
		}
	}

	return last
}

// directiveIndex only accepts a directive before any other code.
func directiveIndex(lines []string) int {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}

		if directiveLine.MatchString(line) {
			return i
		}

		return -1
	}

	return -1
}

func joinInserted(lines []string, at int, inserted ...string) string {
	if at > len(lines) {
		at = len(lines)
	}

	out := make([]string, 0, len(lines)+len(inserted))
	out = append(out, lines[:at]...)
	out = append(out, inserted...)
	out = append(out, lines[at:]...)

	return strings.Join(out, "\n")
}
