package wrappers

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

var (
	rateLimitCall = Call{Open: "withActionRateLimit('create', async () => {", Close: "})"}
	csrfCall      = Call{Open: "withCSRFProtection(async () => {", Close: "})"}
	rateLimitHead = regexp.MustCompile(`withActionRateLimit\(\s*'(\w+)'\s*,\s*async\s*\(\)\s*=>\s*\{`)
)

func wrapFirst(t *testing.T, text string, call Call) string {
	t.Helper()

	span, ok := LocateFunction(text, 0, ScanAware)
	require.True(t, ok)

	out, err := Wrap(text, span, call, DefaultIndent)
	require.NoError(t, err)

	return out
}

func TestWrap_SingleLineBody(t *testing.T) {
	text := "export async function createJob(data) { return db.insert(data) }\n"

	got := wrapFirst(t, text, rateLimitCall)
	want := "export async function createJob(data) {\n" +
		"  return withActionRateLimit('create', async () => {\n" +
		"    return db.insert(data)\n" +
		"  })\n" +
		"}\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Wrap() mismatch (-want +got):\n%s", diff)
	}
}

func TestWrap_MultiLineBodyKeepsBlankLines(t *testing.T) {
	text := "// header\nexport async function list(): Promise<Item[]> {\n  const a = 1\n\n  if (a) {\n    return []\n  }\n  return [a]\n}\n\nconst after = true\n"

	got := wrapFirst(t, text, rateLimitCall)
	want := "// header\nexport async function list(): Promise<Item[]> {\n" +
		"  return withActionRateLimit('create', async () => {\n" +
		"    const a = 1\n" +
		"\n" +
		"    if (a) {\n" +
		"      return []\n" +
		"    }\n" +
		"    return [a]\n" +
		"  })\n" +
		"}\n\nconst after = true\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Wrap() mismatch (-want +got):\n%s", diff)
	}
}

func TestWrap_PreservesBytesOutsideSpan(t *testing.T) {
	text := "'use server'\n\nimport a from 'a'\n\nexport async function f(x = { y: 1 }): Promise<void> {\n  await a(x)\n}\n\nexport const z = 2\n"

	span, ok := LocateFunction(text, 0, ScanAware)
	require.True(t, ok)

	got, err := Wrap(text, span, rateLimitCall, DefaultIndent)
	require.NoError(t, err)

	prefix := text[:span.BodyStart]
	suffix := text[span.BodyEnd+1:]

	assert.True(t, strings.HasPrefix(got, prefix))
	assert.True(t, strings.HasSuffix(got, suffix))

	wrapped, ok := LocateFunction(got, 0, ScanAware)
	require.True(t, ok)
	assert.Equal(t, prefix+suffix, got[:wrapped.BodyStart]+got[wrapped.BodyEnd+1:])

	braces, parens := Balance(got, ScanAware)
	assert.Zero(t, braces)
	assert.Zero(t, parens)
}

func TestWrap_NestsSecondWrapperInsideFirst(t *testing.T) {
	text := "export async function f() {\n  const a = 1\n  return a\n}\n"

	first := wrapFirst(t, text, Call{Open: "withActionRateLimit('default', async () => {", Close: "})"})

	span, ok := LocateCall(first, rateLimitHead, ScanAware)
	require.True(t, ok)

	second, err := Wrap(first, span, csrfCall, DefaultIndent)
	require.NoError(t, err)

	want := "export async function f() {\n" +
		"  return withActionRateLimit('default', async () => {\n" +
		"    return withCSRFProtection(async () => {\n" +
		"      const a = 1\n" +
		"      return a\n" +
		"    })\n" +
		"  })\n" +
		"}\n"

	if diff := cmp.Diff(want, second); diff != "" {
		t.Fatalf("nested Wrap() mismatch (-want +got):\n%s", diff)
	}
}

func TestWrap_EmptyBody(t *testing.T) {
	got := wrapFirst(t, "export async function noop() {}\n", rateLimitCall)

	assert.Equal(t, "export async function noop() {\n  return withActionRateLimit('create', async () => {\n  })\n}\n", got)
}

func TestWrap_InvalidSpan(t *testing.T) {
	text := "export async function f() {}"

	_, err := Wrap(text, m.FunctionSpan{}, rateLimitCall, DefaultIndent)
	assert.Error(t, err)

	_, err = Wrap(text, m.FunctionSpan{ParamsStart: 0, ParamsEnd: 1, BodyStart: 2, BodyEnd: 3}, rateLimitCall, DefaultIndent)
	assert.Error(t, err, "span not on braces")
}

func TestTemplate_Render(t *testing.T) {
	tpl, err := ParseTemplate(m.WrapperKind{
		Name:  "ratelimit",
		Open:  "withActionRateLimit('{{.Category}}', async () => {",
		Close: "}) // {{.Function}}",
	})
	require.NoError(t, err)

	call, err := tpl.Render(CallData{Category: m.CategoryBulk, Function: "bulkImport"})
	require.NoError(t, err)
	assert.Equal(t, "withActionRateLimit('bulk', async () => {", call.Open)
	assert.Equal(t, "}) // bulkImport", call.Close)

	_, err = ParseTemplate(m.WrapperKind{Name: "broken", Open: "{{.Category", Close: "})"})
	assert.Error(t, err)
}
