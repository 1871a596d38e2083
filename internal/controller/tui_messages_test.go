package controller

import (
	"testing"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

func TestFileItem_FilterValue(t *testing.T) {
	item := newFileItem(m.FileResult{
		Path:      "src/actions/a.ts",
		Outcome:   m.OutcomeSuccess,
		Functions: []m.WrappedFunction{{Name: "createA", Category: m.CategoryCreate}},
	})

	if got, want := item.FilterValue(), "src/actions/a.ts success createA[create]"; got != want {
		t.Fatalf("FilterValue() = %q, want %q", got, want)
	}

	if item.count != 1 {
		t.Fatalf("count = %d, want 1", item.count)
	}
}
