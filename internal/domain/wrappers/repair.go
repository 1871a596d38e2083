package wrappers

import "regexp"

// malformedClosing matches a closing call and function brace followed by
// blank lines and duplicated closing-call lines before another closing
// brace, as left behind by wrapper runs that located the wrong brace.
var malformedClosing = regexp.MustCompile(
	`(?m)^([ \t]*\}\)[ \t]*)\n\}[ \t]*\n(?:[ \t]*\n)+(?:[ \t]*[\})]\)+;?[ \t]*\n)+\}[ \t]*$`,
)

// Repair collapses every malformed closing region to the canonical
// `})` newline `}` sequence. It returns the text and the number of regions
// rewritten; text without the pattern is returned unchanged.
func Repair(text string) (string, int) {
	matches := malformedClosing.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, 0
	}

	for i := len(matches) - 1; i >= 0; i-- {
		loc := matches[i]
		canonical := text[loc[2]:loc[3]] + "\n}"
		text = replaceRange(text, loc[0], loc[1], canonical)
	}

	return text, len(matches)
}
