package wrappers

import (
	"fmt"
	"strings"
	"text/template"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

// Call is a rendered wrapper call: Open ends by opening the inner closure
// body and Close terminates both the closure and the call.
type Call struct {
	Open  string
	Close string
}

// CallData is what the open/close templates of a wrapper kind can reference.
type CallData struct {
	Category m.WrapCategory
	Function string
}

// Template holds the parsed open/close templates of one wrapper kind.
type Template struct {
	open  *template.Template
	close *template.Template
}

// ParseTemplate parses the open and close templates of kind.
func ParseTemplate(kind m.WrapperKind) (*Template, error) {
	open, err := template.New(kind.Name + ".open").Option("missingkey=error").Parse(kind.Open)
	if err != nil {
		return nil, fmt.Errorf("parse open template of %q: %w", kind.Name, err)
	}

	closing, err := template.New(kind.Name + ".close").Option("missingkey=error").Parse(kind.Close)
	if err != nil {
		return nil, fmt.Errorf("parse close template of %q: %w", kind.Name, err)
	}

	return &Template{open: open, close: closing}, nil
}

// Render produces the wrapper call for one function.
func (t *Template) Render(data CallData) (Call, error) {
	var open, closing strings.Builder

	if err := t.open.Execute(&open, data); err != nil {
		return Call{}, fmt.Errorf("render open: %w", err)
	}

	if err := t.close.Execute(&closing, data); err != nil {
		return Call{}, fmt.Errorf("render close: %w", err)
	}

	return Call{Open: open.String(), Close: closing.String()}, nil
}

// Wrap replaces the body [span.BodyStart, span.BodyEnd] of text with a body
// that returns call wrapping the original interior. Bytes outside the span
// are kept as they are.
func Wrap(text string, span m.FunctionSpan, call Call, unit string) (string, error) {
	if !span.Valid() || span.BodyEnd >= len(text) || text[span.BodyStart] != '{' || text[span.BodyEnd] != '}' {
		return text, fmt.Errorf("invalid body span %d..%d", span.BodyStart, span.BodyEnd)
	}

	if unit == "" {
		unit = DefaultIndent
	}

	base := lineIndent(text, span.BodyStart)
	inner := base + unit
	body := normalizeInterior(span.Interior(text), inner)

	var b strings.Builder

	b.WriteString("{\n")
	b.WriteString(inner + "return " + call.Open + "\n")

	if body != "" {
		b.WriteString(indentLines(body, unit) + "\n")
	}

	b.WriteString(inner + call.Close + "\n")
	b.WriteString(base + "}")

	return replaceRange(text, span.BodyStart, span.BodyEnd+1, b.String()), nil
}

// normalizeInterior drops the blank remainder of the opening brace line and
// trailing whitespace. A body written on a single line is moved to its own
// line at indent.
func normalizeInterior(interior, indent string) string {
	if nl := strings.IndexByte(interior, '\n'); nl >= 0 && strings.TrimSpace(interior[:nl]) == "" {
		interior = interior[nl+1:]
	} else if nl < 0 {
		trimmed := strings.TrimSpace(interior)
		if trimmed == "" {
			return ""
		}

		return indent + trimmed
	} else {
		// code after the opening brace on the same line
		interior = indent + strings.TrimLeft(interior, " \t")
	}

	return strings.TrimRight(interior, " \t\r\n")
}
