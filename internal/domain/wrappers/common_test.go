package wrappers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceRange(t *testing.T) {
	assert.Equal(t, "aXYZe", replaceRange("abcde", 1, 4, "XYZ"))
	assert.Equal(t, "abcde", replaceRange("abcde", 10, 12, "nope"), "out of range leaves text untouched")
	assert.Equal(t, "abcde", replaceRange("abcde", 3, 2, "nope"))
}

func TestIndentLines(t *testing.T) {
	assert.Equal(t, "  a\n\n  b\n \t", indentLines("a\n\nb\n \t", "  "))
}

func TestLineIndent(t *testing.T) {
	text := "x\n\t  y {\n"
	assert.Equal(t, "\t  ", lineIndent(text, strings.Index(text, "{")))
	assert.Equal(t, "", lineIndent(text, 0))
}

func TestDiffText(t *testing.T) {
	before := "a\nb\nc\n"
	after := "a\nb\nB2\nc\n"

	diff := DiffText("x.ts", before, after)

	assert.True(t, strings.HasPrefix(diff, "--- x.ts\n+++ x.ts\n"))
	assert.Contains(t, diff, "+B2\n")
	assert.Contains(t, diff, " b\n")
	assert.Contains(t, diff, " c\n")
	assert.NotContains(t, diff, "\n-")

	assert.Empty(t, DiffText("x.ts", before, before))
}
