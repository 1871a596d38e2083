package domain

import (
	"path"
	"regexp"
	"strings"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

// Excluder drops discovered files before they are processed. Paths are
// compared in their slash separated form relative to the project root.
type Excluder struct {
	paths    map[string]struct{}
	patterns []string
	regexes  []*regexp.Regexp
}

// NewExcluder combines the static exclusion list, the path substring
// patterns and any user supplied regular expressions.
func NewExcluder(paths, patterns []string, regexes []*regexp.Regexp) Excluder {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[path.Clean(strings.ReplaceAll(p, "\\", "/"))] = struct{}{}
	}

	return Excluder{paths: set, patterns: patterns, regexes: regexes}
}

// Excluded reports whether rel must be skipped.
func (e Excluder) Excluded(rel m.Path) bool {
	p := path.Clean(strings.ReplaceAll(string(rel), "\\", "/"))

	if _, ok := e.paths[p]; ok {
		return true
	}

	for _, pattern := range e.patterns {
		if pattern != "" && strings.Contains(p, pattern) {
			return true
		}
	}

	for _, re := range e.regexes {
		if re.MatchString(p) {
			return true
		}
	}

	return false
}
