package model

// Outcome is the single result recorded for each processed file.
type Outcome string

const (
	OutcomeSuccess             Outcome = "success"
	OutcomeAlreadyProtected    Outcome = "already_protected"
	OutcomeMissingPrecondition Outcome = "missing_precondition"
	OutcomeNoFunction          Outcome = "no_function"
	OutcomeParseError          Outcome = "parse_error"
	OutcomeWrapFailed          Outcome = "wrap_failed"
	OutcomeNotFound            Outcome = "not_found"
	OutcomeError               Outcome = "error"
	// OutcomeIgnored marks files or functions opted out by a guardwrap:ignore
	// directive.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeUnchanged is only produced by the repair pass.
	OutcomeUnchanged Outcome = "unchanged"
)

// Outcomes lists every outcome in report order.
var Outcomes = []Outcome{
	OutcomeSuccess,
	OutcomeAlreadyProtected,
	OutcomeMissingPrecondition,
	OutcomeNoFunction,
	OutcomeParseError,
	OutcomeWrapFailed,
	OutcomeNotFound,
	OutcomeError,
	OutcomeIgnored,
	OutcomeUnchanged,
}

// Failed reports whether the outcome indicates a defect rather than a skip.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeParseError, OutcomeWrapFailed, OutcomeError:
		return true
	default:
		return false
	}
}

// WrapCategory selects which configuration an inserted wrapper call uses.
type WrapCategory string

const (
	CategoryCreate  WrapCategory = "create"
	CategoryBulk    WrapCategory = "bulk"
	CategoryAI      WrapCategory = "ai"
	CategoryDefault WrapCategory = "default"
)

// Categories lists every category in report order.
var Categories = []WrapCategory{CategoryCreate, CategoryBulk, CategoryAI, CategoryDefault}
