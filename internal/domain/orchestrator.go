package domain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mouse-blink/guardwrap/internal/adapter"
	"github.com/mouse-blink/guardwrap/internal/domain/wrappers"
	m "github.com/mouse-blink/guardwrap/internal/model"
)

// ErrInvalidOutput marks a candidate that failed write-time validation. The
// file is left untouched.
var ErrInvalidOutput = errors.New("output failed validation")

// Orchestrator validates a transform candidate and commits it to disk in a
// single write.
type Orchestrator interface {
	Commit(ctx context.Context, source m.SourceFile, cand Candidate, dryRun bool) error
}

// OrchestratorOptions selects the validation steps.
type OrchestratorOptions struct {
	Mode         wrappers.ScanMode
	VerifySyntax bool
}

type orchestrator struct {
	fsAdapter     adapter.SourceFSAdapter
	syntaxAdapter adapter.SyntaxAdapter
	opts          OrchestratorOptions
	logger        *zap.Logger
}

// NewOrchestrator constructs an Orchestrator backed by the provided
// filesystem and syntax adapters. syntaxAdapter may be nil when syntax
// verification is off.
func NewOrchestrator(fsAdapter adapter.SourceFSAdapter, syntaxAdapter adapter.SyntaxAdapter, opts OrchestratorOptions, logger *zap.Logger) Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.Mode == "" {
		opts.Mode = wrappers.ScanAware
	}

	return &orchestrator{
		fsAdapter:     fsAdapter,
		syntaxAdapter: syntaxAdapter,
		opts:          opts,
		logger:        logger,
	}
}

func (o *orchestrator) Commit(ctx context.Context, source m.SourceFile, cand Candidate, dryRun bool) error {
	before := string(source.Content)

	if err := o.validate(ctx, source.Path, before, cand); err != nil {
		return err
	}

	if dryRun {
		return nil
	}

	return o.write(source.Path, cand.Text)
}

func (o *orchestrator) validate(ctx context.Context, path m.Path, before string, cand Candidate) error {
	if cand.Repaired {
		if imbalance(cand.Text) > imbalance(before) {
			return fmt.Errorf("%w: repair increased delimiter imbalance", ErrInvalidOutput)
		}
	} else {
		if err := o.validateWrap(before, cand); err != nil {
			return err
		}
	}

	if o.opts.VerifySyntax && o.syntaxAdapter != nil {
		return o.validateSyntax(ctx, path, before, cand.Text)
	}

	return nil
}

func (o *orchestrator) validateWrap(before string, cand Candidate) error {
	bb, bp := wrappers.Balance(before, wrappers.ScanAware)
	ab, ap := wrappers.Balance(cand.Text, wrappers.ScanAware)

	if bb != ab || bp != ap {
		return fmt.Errorf("%w: delimiter balance changed from %d/%d to %d/%d (braces/parens)", ErrInvalidOutput, bb, bp, ab, ap)
	}

	inserted := make(map[string]int, len(cand.Heads))
	for _, head := range cand.Heads {
		inserted[head]++
	}

	for head, want := range inserted {
		if got := o.wrappedBodies(cand.Text, head); got < want {
			return fmt.Errorf("%w: %d of %d bodies opened by %q re-locate", ErrInvalidOutput, got, want, head)
		}
	}

	if cand.Anchor == m.AnchorFunction {
		if _, ok := wrappers.LocateFunctions(cand.Text, o.opts.Mode); !ok {
			return fmt.Errorf("%w: function boundaries do not re-locate", ErrInvalidOutput)
		}
	}

	return nil
}

// wrappedBodies counts code occurrences of "return <head>" whose closure
// body closes.
func (o *orchestrator) wrappedBodies(text, head string) int {
	needle := "return " + strings.TrimRight(head, " \t")
	count := 0

	for from := 0; ; {
		i := strings.Index(text[from:], needle)
		if i < 0 {
			return count
		}

		at := from + i
		open := at + len(needle) - 1
		from = at + len(needle)

		if !wrappers.IsCode(text, at, wrappers.ScanAware) {
			continue
		}

		if _, ok := wrappers.MatchBrace(text, open, wrappers.ScanAware); ok {
			count++
		}
	}
}

func (o *orchestrator) validateSyntax(ctx context.Context, path m.Path, before, after string) error {
	errsBefore, err := o.syntaxAdapter.Errors(ctx, path, []byte(before))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		o.logger.Debug("syntax check skipped", zap.String("path", string(path)), zap.Error(err))

		return nil
	}

	errsAfter, err := o.syntaxAdapter.Errors(ctx, path, []byte(after))
	if err != nil {
		return fmt.Errorf("syntax check %s: %w", path, err)
	}

	if errsAfter > errsBefore {
		return fmt.Errorf("%w: syntax errors rose from %d to %d", ErrInvalidOutput, errsBefore, errsAfter)
	}

	return nil
}

func (o *orchestrator) write(path m.Path, text string) error {
	perm := os.FileMode(0o644)
	if info, err := o.fsAdapter.FileInfo(path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := o.fsAdapter.WriteFile(path, []byte(text), perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func imbalance(text string) int {
	braces, parens := wrappers.Balance(text, wrappers.ScanAware)

	return abs(braces) + abs(parens)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}
