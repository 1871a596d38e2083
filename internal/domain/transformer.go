// Package domain contains the wrapping workflow: the per-file transform
// pipeline, write-time validation and the batch runner.
package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mouse-blink/guardwrap/internal/domain/wrappers"
	m "github.com/mouse-blink/guardwrap/internal/model"
)

// Candidate is the in-memory output of a transform, not yet written.
type Candidate struct {
	Text      string
	Anchor    m.Anchor
	Heads     []string
	Functions []m.WrappedFunction
	// Repaired is set by the repair pass, whose output is validated
	// differently from wrapper output.
	Repaired bool
}

// TransformOptions carries the settings shared by every wrapper kind.
type TransformOptions struct {
	Classifier   Classifier
	Mode         wrappers.ScanMode
	Indent       string
	AllFunctions bool
}

// Transformer applies one wrapper kind to source files.
type Transformer struct {
	kind    m.WrapperKind
	guard   Guard
	tmpl    *wrappers.Template
	pattern *regexp.Regexp
	opts    TransformOptions
}

// NewTransformer prepares the templates and call pattern of kind.
func NewTransformer(kind m.WrapperKind, opts TransformOptions) (*Transformer, error) {
	tmpl, err := wrappers.ParseTemplate(kind)
	if err != nil {
		return nil, err
	}

	t := &Transformer{
		kind:  kind,
		guard: NewGuard(kind),
		tmpl:  tmpl,
		opts:  opts,
	}

	if t.opts.Mode == "" {
		t.opts.Mode = wrappers.ScanAware
	}

	if kind.Anchor == m.AnchorCall {
		t.pattern, err = regexp.Compile(kind.CallPattern)
		if err != nil {
			return nil, fmt.Errorf("compile call pattern of %q: %w", kind.Name, err)
		}
	}

	return t, nil
}

// target is one body to wrap together with the function it belongs to.
type target struct {
	span m.FunctionSpan
	name string
	decl int
}

// Apply runs guard, import injection, location and wrapping over source.
// The returned result carries the outcome; the candidate is meaningful only
// when the outcome is success. Source content is never modified.
func (t *Transformer) Apply(source m.SourceFile) (Candidate, m.FileResult) {
	text := string(source.Content)
	res := m.FileResult{Path: source.Rel}

	switch t.guard.Check(text) {
	case AlreadyProtected:
		res.Outcome = m.OutcomeAlreadyProtected
		return Candidate{}, res
	case MissingPrecondition:
		res.Outcome = m.OutcomeMissingPrecondition
		res.Detail = fmt.Sprintf("requires %s", strings.Join(t.kind.Requires, ", "))

		return Candidate{}, res
	}

	if t.kind.Anchor == m.AnchorFunction {
		if !wrappers.HasDeclaration(text, t.opts.Mode) {
			res.Outcome = m.OutcomeNoFunction
			return Candidate{}, res
		}

		if len(wrappers.DeclaredNames(text, t.opts.Mode)) == 0 {
			res.Outcome = m.OutcomeParseError
			res.Detail = "declaration without a function name"

			return Candidate{}, res
		}
	}

	if buildIgnoreIndex(text, wrappers.DeclarationOffsets(text, t.opts.Mode)).fileIgnores(t.kind.Name) {
		res.Outcome = m.OutcomeIgnored
		return Candidate{}, res
	}

	text = wrappers.InjectImport(text, t.kind.ImportLine, t.kind.ImportAnchor)

	targets, outcome, detail := t.locate(text)
	if outcome != m.OutcomeSuccess {
		res.Outcome = outcome
		res.Detail = detail

		return Candidate{}, res
	}

	cand, err := t.wrapAll(text, source.Rel, targets)
	if err != nil {
		res.Outcome = m.OutcomeError
		res.Detail = err.Error()
		res.Err = err

		return Candidate{}, res
	}

	res.Outcome = m.OutcomeSuccess
	res.Functions = cand.Functions

	return cand, res
}

func (t *Transformer) locate(text string) ([]target, m.Outcome, string) {
	idx := buildIgnoreIndex(text, wrappers.DeclarationOffsets(text, t.opts.Mode))
	ignored := func(tg target) bool {
		return tg.decl >= 0 && idx.functionIgnores(text, tg.decl, t.kind.Name)
	}

	var (
		targets []target
		outcome m.Outcome
		detail  string
	)

	switch {
	case t.kind.Anchor == m.AnchorCall:
		targets, outcome, detail = t.locateCalls(text)
	case t.opts.AllFunctions:
		targets, outcome, detail = t.locateFunctions(text)
	default:
		targets, outcome, detail = t.locateFirstFunction(text, ignored)
	}

	if outcome != m.OutcomeSuccess {
		return nil, outcome, detail
	}

	kept := targets[:0]

	for _, tg := range targets {
		if !ignored(tg) {
			kept = append(kept, tg)
		}
	}

	if len(kept) == 0 {
		return nil, m.OutcomeIgnored, "every function is opted out"
	}

	if !t.opts.AllFunctions {
		kept = kept[:1]
	}

	return kept, m.OutcomeSuccess, ""
}

func (t *Transformer) locateFunctions(text string) ([]target, m.Outcome, string) {
	spans, ok := wrappers.LocateFunctions(text, t.opts.Mode)
	if !ok {
		return nil, m.OutcomeWrapFailed, "function body boundaries not found"
	}

	targets := make([]target, 0, len(spans))
	for _, span := range spans {
		targets = append(targets, functionTarget(text, span))
	}

	return targets, m.OutcomeSuccess, ""
}

// locateFirstFunction returns the first function not opted out. Only the
// boundaries of the functions it walks past need to resolve.
func (t *Transformer) locateFirstFunction(text string, ignored func(target) bool) ([]target, m.Outcome, string) {
	var first *target

	for from := 0; from <= len(text); {
		span, ok := wrappers.LocateFunction(text, from, t.opts.Mode)
		if !ok {
			break
		}

		tg := functionTarget(text, span)
		if !ignored(tg) {
			return []target{tg}, m.OutcomeSuccess, ""
		}

		if first == nil {
			first = &tg
		}

		from = span.BodyEnd + 1
	}

	if first != nil {
		return []target{*first}, m.OutcomeSuccess, ""
	}

	return nil, m.OutcomeWrapFailed, "function body boundaries not found"
}

func functionTarget(text string, span m.FunctionSpan) target {
	return target{span: span, name: span.Name, decl: declStart(text, span.ParamsStart)}
}

// locateCalls resolves the closures opened by the call pattern. A file
// whose inner wrapper call was removed or renamed is a missing
// precondition rather than a wrap failure.
func (t *Transformer) locateCalls(text string) ([]target, m.Outcome, string) {
	spans, ok := wrappers.LocateCalls(text, t.pattern, t.opts.Mode)
	if !ok {
		return nil, m.OutcomeMissingPrecondition, "no call matching " + t.pattern.String()
	}

	funcs, _ := wrappers.LocateFunctions(text, t.opts.Mode)

	targets := make([]target, 0, len(spans))

	for _, span := range spans {
		tg := target{span: span, decl: -1}

		for _, fn := range funcs {
			if fn.BodyStart < span.BodyStart && span.BodyEnd < fn.BodyEnd {
				tg.name = fn.Name
				tg.decl = declStart(text, fn.ParamsStart)

				break
			}
		}

		targets = append(targets, tg)
	}

	return targets, m.OutcomeSuccess, ""
}

// wrapAll wraps targets back to front so earlier offsets stay valid.
func (t *Transformer) wrapAll(text string, rel m.Path, targets []target) (Candidate, error) {
	cand := Candidate{Anchor: t.kind.Anchor}

	functions := make([]m.WrappedFunction, len(targets))
	heads := make([]string, len(targets))

	order := make([]int, len(targets))
	for i := range order {
		order[i] = i
	}

	sort.Slice(order, func(a, b int) bool {
		return targets[order[a]].span.BodyStart > targets[order[b]].span.BodyStart
	})

	for _, i := range order {
		tg := targets[i]
		category := t.opts.Classifier.Classify(rel, tg.name)

		call, err := t.tmpl.Render(wrappers.CallData{Category: category, Function: tg.name})
		if err != nil {
			return Candidate{}, err
		}

		text, err = wrappers.Wrap(text, tg.span, call, t.opts.Indent)
		if err != nil {
			return Candidate{}, err
		}

		functions[i] = m.WrappedFunction{Name: tg.name}
		if t.kind.Categorized {
			functions[i].Category = category
		}

		heads[i] = call.Open
	}

	cand.Text = text
	cand.Functions = functions
	cand.Heads = heads

	return cand, nil
}

// declStart returns the offset of the export keyword preceding paren.
func declStart(text string, paren int) int {
	if paren > len(text) {
		paren = len(text)
	}

	return strings.LastIndex(text[:paren], "export")
}
