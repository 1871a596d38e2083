package model

// WrappedFunction records one function body that received a wrapper call.
type WrappedFunction struct {
	Name     string       `yaml:"name"`
	Category WrapCategory `yaml:"category,omitempty"`
}

// FileResult holds the outcome of processing a single source file.
type FileResult struct {
	Path      Path              `yaml:"path"`
	Outcome   Outcome           `yaml:"outcome"`
	Functions []WrappedFunction `yaml:"functions,omitempty"`
	Detail    string            `yaml:"detail,omitempty"`
	Diff      string            `yaml:"-"`
	Before    string            `yaml:"hash_before,omitempty"`
	After     string            `yaml:"hash_after,omitempty"`
	Err       error             `yaml:"-"`
}

// BatchReport aggregates the file results of a whole run.
type BatchReport struct {
	Kind       string               `yaml:"kind"`
	DryRun     bool                 `yaml:"dry_run"`
	Attempted  int                  `yaml:"attempted"`
	Outcomes   map[Outcome]int      `yaml:"outcomes"`
	Categories map[WrapCategory]int `yaml:"categories,omitempty"`
	Files      []FileResult         `yaml:"files"`
}

// NewBatchReport creates an empty report for the named wrapper kind.
func NewBatchReport(kind string) *BatchReport {
	return &BatchReport{
		Kind:       kind,
		Outcomes:   make(map[Outcome]int),
		Categories: make(map[WrapCategory]int),
	}
}

// Add accumulates a file result. Categories are counted per wrapped function.
func (r *BatchReport) Add(res FileResult) {
	r.Attempted++
	r.Outcomes[res.Outcome]++
	r.Files = append(r.Files, res)

	if res.Outcome != OutcomeSuccess {
		return
	}

	for _, fn := range res.Functions {
		if fn.Category != "" {
			r.Categories[fn.Category]++
		}
	}
}

// Succeeded returns the number of files that ended in OutcomeSuccess.
func (r *BatchReport) Succeeded() int {
	return r.Outcomes[OutcomeSuccess]
}

// Failures returns the number of files whose outcome is a defect.
func (r *BatchReport) Failures() int {
	n := 0

	for outcome, count := range r.Outcomes {
		if outcome.Failed() {
			n += count
		}
	}

	return n
}
