// Package wrappers implements the text-level pieces of the transform: a
// delimiter-aware scanner, the boundary locator, import injection, body
// wrapping and the repair pass. Everything here is a pure function of its
// input text.
package wrappers

// ScanMode selects how the scanner treats delimiters inside literals.
type ScanMode string

const (
	// ScanAware skips string literals, template literals and comments.
	ScanAware ScanMode = "aware"
	// ScanLiteral counts every delimiter byte, including ones inside
	// strings and comments.
	ScanLiteral ScanMode = "literal"
)

type lexState int

const (
	stateCode lexState = iota
	stateLineComment
	stateBlockComment
	stateSingleQuote
	stateDoubleQuote
	stateTemplate
)

// Scan calls visit for each byte of text[from:] that belongs to code, in
// order, until visit returns false. The scan assumes text[from] starts in
// code. In ScanAware mode the bytes of string literals, template literal
// text and comments are never visited; neither are the `${` and closing `}`
// of a template interpolation, whose contents are visited as code.
//
// Regex literals are not recognised: a slash starts a comment or is code.
func Scan(text string, from int, mode ScanMode, visit func(i int, c byte) bool) {
	if from < 0 {
		from = 0
	}

	if mode == ScanLiteral {
		for i := from; i < len(text); i++ {
			if !visit(i, text[i]) {
				return
			}
		}

		return
	}

	state := stateCode
	// brace depth inside each open ${...} interpolation
	var interp []int

	for i := from; i < len(text); i++ {
		c := text[i]

		switch state {
		case stateLineComment:
			if c == '\n' {
				state = stateCode
			}

			continue
		case stateBlockComment:
			if c == '*' && peek(text, i+1) == '/' {
				state = stateCode
				i++
			}

			continue
		case stateSingleQuote, stateDoubleQuote:
			switch {
			case c == '\\':
				i++
			case c == '\n',
				state == stateSingleQuote && c == '\'',
				state == stateDoubleQuote && c == '"':
				state = stateCode
			}

			continue
		case stateTemplate:
			switch {
			case c == '\\':
				i++
			case c == '`':
				state = stateCode
			case c == '$' && peek(text, i+1) == '{':
				interp = append(interp, 0)
				state = stateCode
				i++
			}

			continue
		}

		switch c {
		case '/':
			switch peek(text, i+1) {
			case '/':
				state = stateLineComment
				i++

				continue
			case '*':
				state = stateBlockComment
				i++

				continue
			}
		case '\'':
			state = stateSingleQuote
			continue
		case '"':
			state = stateDoubleQuote
			continue
		case '`':
			state = stateTemplate
			continue
		case '{':
			if len(interp) > 0 {
				interp[len(interp)-1]++
			}
		case '}':
			if len(interp) > 0 {
				top := len(interp) - 1
				if interp[top] == 0 {
					interp = interp[:top]
					state = stateTemplate

					continue
				}

				interp[top]--
			}
		}

		if !visit(i, c) {
			return
		}
	}
}

// IsCode reports whether offset pos of text lies in code rather than inside
// a literal or comment.
func IsCode(text string, pos int, mode ScanMode) bool {
	if mode == ScanLiteral {
		return pos >= 0 && pos < len(text)
	}

	found := false

	Scan(text, 0, mode, func(i int, _ byte) bool {
		if i >= pos {
			found = i == pos
			return false
		}

		return true
	})

	return found
}

// Balance returns the net count of opening minus closing braces and
// parentheses seen by the scanner.
func Balance(text string, mode ScanMode) (braces, parens int) {
	Scan(text, 0, mode, func(_ int, c byte) bool {
		switch c {
		case '{':
			braces++
		case '}':
			braces--
		case '(':
			parens++
		case ')':
			parens--
		}

		return true
	})

	return braces, parens
}

// matchClose scans from open+1 for the delimiter closing the one at open.
func matchClose(text string, open int, mode ScanMode) (int, bool) {
	if open < 0 || open >= len(text) {
		return 0, false
	}

	opening := text[open]

	var closing byte

	switch opening {
	case '{':
		closing = '}'
	case '(':
		closing = ')'
	default:
		return 0, false
	}

	depth := 1
	end := -1

	Scan(text, open+1, mode, func(i int, c byte) bool {
		switch c {
		case opening:
			depth++
		case closing:
			depth--
			if depth == 0 {
				end = i
				return false
			}
		}

		return true
	})

	return end, end >= 0
}

func peek(text string, i int) byte {
	if i < len(text) {
		return text[i]
	}

	return 0
}
