package model

// Anchor tells the locator what a wrapper kind wraps.
type Anchor string

const (
	// AnchorFunction wraps the body of an exported async function declaration.
	AnchorFunction Anchor = "function"
	// AnchorCall wraps the closure body opened by the match of CallPattern.
	AnchorCall Anchor = "call"
)

// WrapperKind parameterises the transform engine. Open and Close are
// text/template strings rendered with the category and function name.
type WrapperKind struct {
	Name         string   `yaml:"name"`
	Symbol       string   `yaml:"symbol"`
	Markers      []string `yaml:"markers,omitempty"`
	Requires     []string `yaml:"requires,omitempty"`
	ImportLine   string   `yaml:"import"`
	ImportAnchor string   `yaml:"import_anchor,omitempty"`
	Anchor       Anchor   `yaml:"anchor"`
	CallPattern  string   `yaml:"call_pattern,omitempty"`
	Open         string   `yaml:"open"`
	Close        string   `yaml:"close"`
	Categorized  bool     `yaml:"categorized"`
}

// ProtectionMarkers returns every substring that marks a file as already wrapped.
func (k WrapperKind) ProtectionMarkers() []string {
	markers := make([]string, 0, len(k.Markers)+1)
	if k.Symbol != "" {
		markers = append(markers, k.Symbol)
	}

	return append(markers, k.Markers...)
}
