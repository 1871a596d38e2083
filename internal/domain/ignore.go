package domain

import (
	"regexp"
	"strings"

	"github.com/mouse-blink/guardwrap/internal/domain/wrappers"
)

const ignoreDirective = "guardwrap:ignore"

// directiveComment matches a line or block comment carrying the directive.
var directiveComment = regexp.MustCompile(`(?://|/\*)[ \t]*guardwrap:ignore\b[^\n]*`)

type ignoreRule struct {
	all   bool
	names map[string]struct{}
}

func (r ignoreRule) ignores(kind string) bool {
	if r.all {
		return true
	}

	if len(r.names) == 0 {
		return false
	}

	_, ok := r.names[strings.ToLower(kind)]

	return ok
}

func mergeIgnoreRule(dst *ignoreRule, src ignoreRule) {
	if src.all {
		dst.all = true
		dst.names = nil

		return
	}

	if dst.all || len(src.names) == 0 {
		return
	}

	if dst.names == nil {
		dst.names = make(map[string]struct{}, len(src.names))
	}

	for name := range src.names {
		dst.names[name] = struct{}{}
	}
}

// parseIgnoreDirective reads "guardwrap:ignore" optionally followed by a
// comma separated list of wrapper kind names.
func parseIgnoreDirective(commentText string) (ignoreRule, bool) {
	s := strings.TrimSpace(commentText)
	if strings.HasPrefix(s, "//") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "//"))
	} else if strings.HasPrefix(s, "/*") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "/*"))
		if end := strings.Index(s, "*/"); end >= 0 {
			s = strings.TrimSpace(s[:end])
		}
	}

	if !strings.HasPrefix(s, ignoreDirective) {
		return ignoreRule{}, false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(s, ignoreDirective))
	if rest == "" {
		return ignoreRule{all: true}, true
	}

	parts := strings.Split(rest, ",")
	rule := ignoreRule{names: make(map[string]struct{}, len(parts))}

	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}

		rule.names[name] = struct{}{}
	}

	if len(rule.names) == 0 {
		rule.all = true
		rule.names = nil
	}

	return rule, true
}

// ignoreIndex holds the directives of one file. Line rules are keyed by the
// 1-based line of the declaration they apply to.
type ignoreIndex struct {
	file ignoreRule
	line map[int]ignoreRule
}

// buildIgnoreIndex collects directives. declOffsets are the offsets of the
// exported declarations of text. A directive directly above a declaration,
// or trailing on its line, applies to that function; any other directive
// placed before the first declaration applies to the whole file.
func buildIgnoreIndex(text string, declOffsets []int) ignoreIndex {
	idx := ignoreIndex{line: make(map[int]ignoreRule)}
	if !strings.Contains(text, ignoreDirective) {
		return idx
	}

	lineStarts := computeLineStarts(text)

	declLines := make(map[int]struct{}, len(declOffsets))
	firstDecl := len(text)

	for _, off := range declOffsets {
		declLines[lineOf(lineStarts, off)] = struct{}{}
		if off < firstDecl {
			firstDecl = off
		}
	}

	for _, loc := range directiveComment.FindAllStringIndex(text, -1) {
		if wrappers.IsCode(text, loc[0], wrappers.ScanAware) {
			continue
		}

		rule, ok := parseIgnoreDirective(text[loc[0]:loc[1]])
		if !ok {
			continue
		}

		line := lineOf(lineStarts, loc[0])
		target := line

		if isLeadingComment(text, lineStarts, line, loc[0]) {
			target = nextCodeLine(text, lineStarts, line)
		}

		if _, ok := declLines[target]; ok {
			current := idx.line[target]
			mergeIgnoreRule(&current, rule)
			idx.line[target] = current

			continue
		}

		if loc[0] < firstDecl {
			mergeIgnoreRule(&idx.file, rule)
		}
	}

	return idx
}

func (idx ignoreIndex) fileIgnores(kind string) bool {
	return idx.file.ignores(kind)
}

// functionIgnores reports whether the declaration starting at offset is
// opted out of kind.
func (idx ignoreIndex) functionIgnores(text string, offset int, kind string) bool {
	if len(idx.line) == 0 {
		return false
	}

	rule, ok := idx.line[lineOf(computeLineStarts(text), offset)]

	return ok && rule.ignores(kind)
}

func computeLineStarts(text string) []int {
	starts := []int{0}

	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}

	return starts
}

// lineOf returns the 1-based line holding offset.
func lineOf(lineStarts []int, offset int) int {
	lo, hi := 0, len(lineStarts)-1

	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return lo + 1
}

func lineText(text string, lineStarts []int, line int) string {
	if line <= 0 || line > len(lineStarts) {
		return ""
	}

	start := lineStarts[line-1]
	end := len(text)

	if line < len(lineStarts) {
		end = lineStarts[line] - 1
	}

	return text[start:end]
}

func isLeadingComment(text string, lineStarts []int, line, offset int) bool {
	start := lineStarts[line-1]

	return strings.TrimSpace(text[start:offset]) == ""
}

// nextCodeLine skips blank and comment-only lines after line.
func nextCodeLine(text string, lineStarts []int, line int) int {
	for next := line + 1; next <= len(lineStarts); next++ {
		s := strings.TrimSpace(lineText(text, lineStarts, next))
		if s == "" || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*") || strings.HasPrefix(s, "*") {
			continue
		}

		return next
	}

	return 0
}
