package wrappers

import (
	"regexp"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

var (
	exportedAsyncDecl = regexp.MustCompile(`export\s+async\s+function\b`)
	exportedAsyncFunc = regexp.MustCompile(`export\s+async\s+function\s+([A-Za-z_$][\w$]*)\s*\(`)
)

// HasDeclaration reports whether text contains an exported async function
// declaration keyword sequence in code, named or not.
func HasDeclaration(text string, mode ScanMode) bool {
	for _, loc := range exportedAsyncDecl.FindAllStringIndex(text, -1) {
		if IsCode(text, loc[0], mode) {
			return true
		}
	}

	return false
}

// DeclaredNames returns the names of every exported async function declared
// in code, in source order.
func DeclaredNames(text string, mode ScanMode) []string {
	var names []string

	for _, loc := range exportedAsyncFunc.FindAllStringSubmatchIndex(text, -1) {
		if IsCode(text, loc[0], mode) {
			names = append(names, text[loc[2]:loc[3]])
		}
	}

	return names
}

// DeclarationOffsets returns the offset of every exported async function
// declaration in code, named or not.
func DeclarationOffsets(text string, mode ScanMode) []int {
	var offsets []int

	for _, loc := range exportedAsyncDecl.FindAllStringIndex(text, -1) {
		if IsCode(text, loc[0], mode) {
			offsets = append(offsets, loc[0])
		}
	}

	return offsets
}

// LocateFunction finds the first exported async function declared at or
// after offset from and resolves its parameter list and body. Overload
// signatures without a body are skipped.
func LocateFunction(text string, from int, mode ScanMode) (m.FunctionSpan, bool) {
	if from < 0 || from > len(text) {
		return m.FunctionSpan{}, false
	}

	for _, loc := range exportedAsyncFunc.FindAllStringSubmatchIndex(text[from:], -1) {
		start := from + loc[0]
		if !IsCode(text, start, mode) {
			continue
		}

		paren := from + loc[1] - 1

		span, res := resolveFunction(text, text[from+loc[2]:from+loc[3]], paren, mode)
		switch res {
		case resolved:
			return span, true
		case bodiless:
			continue
		default:
			return m.FunctionSpan{}, false
		}
	}

	return m.FunctionSpan{}, false
}

// LocateFunctions resolves every exported async function in text. It stops
// at the first declaration whose boundaries cannot be resolved and reports
// false, so callers never act on a partial set.
func LocateFunctions(text string, mode ScanMode) ([]m.FunctionSpan, bool) {
	var spans []m.FunctionSpan

	for _, loc := range exportedAsyncFunc.FindAllStringSubmatchIndex(text, -1) {
		if !IsCode(text, loc[0], mode) {
			continue
		}

		// declarations nested in an already located body are not top level
		if len(spans) > 0 && loc[0] < spans[len(spans)-1].BodyEnd {
			continue
		}

		span, res := resolveFunction(text, text[loc[2]:loc[3]], loc[1]-1, mode)
		switch res {
		case bodiless:
			continue
		case unresolved:
			return nil, false
		}

		spans = append(spans, span)
	}

	return spans, len(spans) > 0
}

// LocateCall finds the first match of pattern in code whose last byte is the
// `{` opening a closure and resolves that closure's body. The params offsets
// cover the matched call head.
func LocateCall(text string, pattern *regexp.Regexp, mode ScanMode) (m.FunctionSpan, bool) {
	spans, ok := locateCalls(text, pattern, mode, 1)
	if !ok {
		return m.FunctionSpan{}, false
	}

	return spans[0], true
}

// LocateCalls resolves every outermost closure opened by a match of pattern.
// Matches nested inside an earlier resolved closure are skipped.
func LocateCalls(text string, pattern *regexp.Regexp, mode ScanMode) ([]m.FunctionSpan, bool) {
	return locateCalls(text, pattern, mode, -1)
}

func locateCalls(text string, pattern *regexp.Regexp, mode ScanMode, limit int) ([]m.FunctionSpan, bool) {
	var spans []m.FunctionSpan

	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		open := loc[1] - 1
		if open < 0 || text[open] != '{' || !IsCode(text, loc[0], mode) {
			continue
		}

		if len(spans) > 0 && loc[0] < spans[len(spans)-1].BodyEnd {
			continue
		}

		end, ok := matchClose(text, open, mode)
		if !ok {
			return nil, false
		}

		span := m.FunctionSpan{
			Name:        text[loc[0]:open],
			ParamsStart: loc[0],
			ParamsEnd:   open - 1,
			BodyStart:   open,
			BodyEnd:     end,
		}
		if !span.Valid() {
			return nil, false
		}

		spans = append(spans, span)
		if limit > 0 && len(spans) == limit {
			break
		}
	}

	return spans, len(spans) > 0
}

// MatchBrace returns the offset of the `}` or `)` closing the delimiter at
// open.
func MatchBrace(text string, open int, mode ScanMode) (int, bool) {
	return matchClose(text, open, mode)
}

type resolution int

const (
	resolved resolution = iota
	// bodiless is an overload signature ending in a semicolon.
	bodiless
	unresolved
)

func resolveFunction(text, name string, paren int, mode ScanMode) (m.FunctionSpan, resolution) {
	paramsEnd, ok := matchClose(text, paren, mode)
	if !ok {
		return m.FunctionSpan{}, unresolved
	}

	bodyStart, overload := findBodyOpen(text, paramsEnd+1, mode)
	if overload {
		return m.FunctionSpan{}, bodiless
	}

	if bodyStart < 0 {
		return m.FunctionSpan{}, unresolved
	}

	bodyEnd, ok := matchClose(text, bodyStart, mode)
	if !ok {
		return m.FunctionSpan{}, unresolved
	}

	span := m.FunctionSpan{
		Name:        name,
		ParamsStart: paren,
		ParamsEnd:   paramsEnd,
		BodyStart:   bodyStart,
		BodyEnd:     bodyEnd,
	}

	if !span.Valid() {
		return m.FunctionSpan{}, unresolved
	}

	return span, resolved
}

// findBodyOpen skips a return type annotation and returns the offset of the
// brace opening the body, or -1. Braces inside generic arguments such as
// Promise<{ ok: boolean }> are part of the type. A bare object-literal return
// type is not supported. overload is true when a semicolon ends the
// declaration first.
func findBodyOpen(text string, from int, mode ScanMode) (open int, overload bool) {
	angle := 0
	open = -1

	Scan(text, from, mode, func(i int, c byte) bool {
		switch c {
		case '<':
			angle++
		case '>':
			if i > 0 && text[i-1] == '=' {
				return true
			}

			if angle > 0 {
				angle--
			}
		case ';':
			if angle == 0 {
				overload = true
				return false
			}
		case '{':
			if angle == 0 {
				open = i
				return false
			}
		}

		return true
	})

	return open, overload
}
