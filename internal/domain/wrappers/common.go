package wrappers

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultIndent is the indent unit used when none is configured.
const DefaultIndent = "  "

func replaceRange(text string, start, end int, replacement string) string {
	if start < 0 || end < start || end > len(text) {
		return text
	}

	var b strings.Builder

	b.Grow(len(text) - (end - start) + len(replacement))
	b.WriteString(text[:start])
	b.WriteString(replacement)
	b.WriteString(text[end:])

	return b.String()
}

// indentLines prefixes every non-blank line with unit. Blank lines pass
// through unchanged.
func indentLines(text, unit string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = unit + line
		}
	}

	return strings.Join(lines, "\n")
}

// lineIndent returns the leading whitespace of the line containing pos.
func lineIndent(text string, pos int) string {
	start := strings.LastIndexByte(text[:pos], '\n') + 1

	end := start
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}

	return text[start:end]
}

// DiffText renders a line-oriented diff of two texts with -/+ markers,
// keeping unchanged lines adjacent to a change as context.
func DiffText(path, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder

	out.WriteString("--- " + path + "\n+++ " + path + "\n")

	for i, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			writePrefixed(&out, "+", text)
		case diffmatchpatch.DiffDelete:
			writePrefixed(&out, "-", text)
		case diffmatchpatch.DiffEqual:
			ctx := strings.Split(text, "\n")
			if i > 0 {
				writePrefixed(&out, " ", ctx[0])
			}

			if i < len(diffs)-1 && len(ctx) > 1 {
				writePrefixed(&out, " ", ctx[len(ctx)-1])
			}
		}
	}

	return out.String()
}

func writePrefixed(out *strings.Builder, prefix, text string) {
	for _, line := range strings.Split(text, "\n") {
		out.WriteString(prefix + line + "\n")
	}
}
