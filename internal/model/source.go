// Package model defines the data structures shared by the transformer packages.
package model

// Path represents a file system path.
type Path string

// SourceFile is a target file loaded for processing. Content is owned by a
// single pipeline for the duration of one run and written back at most once.
type SourceFile struct {
	// Path is the absolute location on disk.
	Path Path
	// Rel is the slash-separated path relative to the project root. Exclusion
	// rules and the classifier operate on it.
	Rel     Path
	Content []byte
	Hash    string
}

// FunctionSpan holds byte offsets into a specific SourceFile's text.
// ParamsStart and ParamsEnd point at the opening and closing parenthesis,
// BodyStart and BodyEnd at the opening and closing brace of the body.
type FunctionSpan struct {
	Name        string
	ParamsStart int
	ParamsEnd   int
	BodyStart   int
	BodyEnd     int
}

// Valid reports whether the offsets are strictly ordered.
func (s FunctionSpan) Valid() bool {
	return s.ParamsStart < s.ParamsEnd && s.ParamsEnd < s.BodyStart && s.BodyStart < s.BodyEnd
}

// Interior returns the body text without its outer braces.
func (s FunctionSpan) Interior(text string) string {
	if s.BodyStart < 0 || s.BodyEnd > len(text) || s.BodyStart >= s.BodyEnd {
		return ""
	}

	return text[s.BodyStart+1 : s.BodyEnd]
}
