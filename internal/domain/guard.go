package domain

import (
	"strings"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

// Verdict is the decision of the idempotency guard.
type Verdict int

const (
	// Proceed means the file can be transformed.
	Proceed Verdict = iota
	// AlreadyProtected means the target wrapper is already present.
	AlreadyProtected
	// MissingPrecondition means a required inner wrapper is absent.
	MissingPrecondition
)

func (v Verdict) String() string {
	switch v {
	case AlreadyProtected:
		return "already_protected"
	case MissingPrecondition:
		return "missing_precondition"
	default:
		return "proceed"
	}
}

// Guard gates a wrapper kind on plain substring markers. It never modifies
// the text it inspects.
type Guard struct {
	markers  []string
	requires []string
}

// NewGuard builds the guard of kind.
func NewGuard(kind m.WrapperKind) Guard {
	return Guard{markers: kind.ProtectionMarkers(), requires: kind.Requires}
}

// Check classifies text. Protection is checked before preconditions so a
// transformed file is reported as protected even if its requirement was
// removed afterwards.
func (g Guard) Check(text string) Verdict {
	for _, marker := range g.markers {
		if marker != "" && strings.Contains(text, marker) {
			return AlreadyProtected
		}
	}

	for _, req := range g.requires {
		if req != "" && !strings.Contains(text, req) {
			return MissingPrecondition
		}
	}

	return Proceed
}
