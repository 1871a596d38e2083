package domain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mouse-blink/guardwrap/internal/adapter"
	"github.com/mouse-blink/guardwrap/internal/config"
	"github.com/mouse-blink/guardwrap/internal/domain/wrappers"
	m "github.com/mouse-blink/guardwrap/internal/model"
)

// ErrRootNotFound is returned when the project root or its target subtree
// does not exist.
var ErrRootNotFound = errors.New("target directory not found")

// Workflow defines the batch operations of the transformer.
type Workflow interface {
	Discover(root m.Path, exclude []*regexp.Regexp) ([]m.SourceFile, error)
	Run(ctx context.Context, args RunArgs) (*m.BatchReport, error)
	Repair(ctx context.Context, args RunArgs) (*m.BatchReport, error)
}

// Observer receives progress events while a batch runs. Calls are
// serialized.
type Observer interface {
	FileStarted(path m.Path, worker int)
	FileDone(res m.FileResult)
}

// RunArgs holds the per-invocation settings of a batch.
type RunArgs struct {
	Root     m.Path
	Kind     string
	Parallel int
	DryRun   bool
	Exclude  []*regexp.Regexp
	Observer Observer
}

type workflow struct {
	fsAdapter adapter.SourceFSAdapter
	cfg       config.Config
	orch      Orchestrator
	logger    *zap.Logger
}

// NewWorkflow creates a Workflow over the given adapters and configuration.
// syntaxAdapter is only consulted when cfg.VerifySyntax is set.
func NewWorkflow(fsAdapter adapter.SourceFSAdapter, syntaxAdapter adapter.SyntaxAdapter, cfg config.Config, logger *zap.Logger) Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := OrchestratorOptions{
		Mode:         scanMode(cfg.ScanMode),
		VerifySyntax: cfg.VerifySyntax,
	}

	return &workflow{
		fsAdapter: fsAdapter,
		cfg:       cfg,
		orch:      NewOrchestrator(fsAdapter, syntaxAdapter, opts, logger),
		logger:    logger,
	}
}

// Discover lists the target files below root/subtree in path order. Files
// are filtered by extension and by the exclusion rules; their content is
// not loaded.
func (w *workflow) Discover(root m.Path, exclude []*regexp.Regexp) ([]m.SourceFile, error) {
	target := w.fsAdapter.JoinPath(string(root), filepath.FromSlash(w.cfg.Subtree))

	info, err := w.fsAdapter.FileInfo(target)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, target)
	}

	excluder := NewExcluder(w.cfg.Exclude, w.cfg.IgnorePatterns, exclude)

	var files []m.SourceFile

	err = w.fsAdapter.Walk(target, true, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !w.hasExtension(path) {
			return nil
		}

		rel, err := w.fsAdapter.RelPath(root, m.Path(path))
		if err != nil {
			return err
		}

		rel = m.Path(filepath.ToSlash(string(rel)))
		if excluder.Excluded(rel) {
			w.logger.Debug("excluded", zap.String("path", string(rel)))
			return nil
		}

		files = append(files, m.SourceFile{Path: m.Path(path), Rel: rel})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", target, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })

	return files, nil
}

// Run applies the wrapper kind named by args.Kind to every discovered file.
func (w *workflow) Run(ctx context.Context, args RunArgs) (*m.BatchReport, error) {
	kind, err := w.cfg.Kind(args.Kind)
	if err != nil {
		return nil, err
	}

	transformer, err := NewTransformer(kind, TransformOptions{
		Classifier:   NewClassifier(w.cfg.Classifier.Keywords, w.cfg.Classifier.AISegment),
		Mode:         scanMode(w.cfg.ScanMode),
		Indent:       w.cfg.Indent,
		AllFunctions: w.cfg.AllFunctions,
	})
	if err != nil {
		return nil, err
	}

	return w.batch(ctx, kind.Name, args, func(ctx context.Context, src m.SourceFile) m.FileResult {
		return w.processWrap(ctx, transformer, src, args.DryRun)
	})
}

// Repair collapses malformed closing regions left by earlier wrapper runs.
func (w *workflow) Repair(ctx context.Context, args RunArgs) (*m.BatchReport, error) {
	return w.batch(ctx, "repair", args, func(ctx context.Context, src m.SourceFile) m.FileResult {
		return w.processRepair(ctx, src, args.DryRun)
	})
}

type fileFunc func(ctx context.Context, src m.SourceFile) m.FileResult

// batch discovers the files and processes them on a bounded worker pool.
// Results are reduced in discovery order, so the report does not depend on
// the degree of parallelism.
func (w *workflow) batch(ctx context.Context, name string, args RunArgs, process fileFunc) (*m.BatchReport, error) {
	files, err := w.Discover(args.Root, args.Exclude)
	if err != nil {
		return nil, err
	}

	parallel := args.Parallel
	if parallel <= 0 {
		parallel = 1
	}

	w.logger.Info("batch started",
		zap.String("kind", name),
		zap.Int("files", len(files)),
		zap.Int("parallel", parallel),
		zap.Bool("dry_run", args.DryRun),
	)

	observer := newSyncObserver(args.Observer)
	results := make([]m.FileResult, len(files))

	workers := make(chan int, parallel)
	for i := 0; i < parallel; i++ {
		workers <- i
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, src := range files {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			worker := <-workers
			defer func() { workers <- worker }()

			observer.FileStarted(src.Rel, worker)

			res := process(gctx, src)
			results[i] = res

			observer.FileDone(res)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := m.NewBatchReport(name)
	report.DryRun = args.DryRun

	for _, res := range results {
		report.Add(res)
	}

	w.logger.Info("batch finished",
		zap.String("kind", name),
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failures", report.Failures()),
	)

	return report, nil
}

func (w *workflow) processWrap(ctx context.Context, transformer *Transformer, src m.SourceFile, dryRun bool) m.FileResult {
	src, res, ok := w.load(src)
	if !ok {
		return res
	}

	cand, res := transformer.Apply(src)
	res.Before = src.Hash

	if res.Outcome != m.OutcomeSuccess {
		w.logOutcome(res)
		return res
	}

	return w.commit(ctx, src, cand, res, dryRun)
}

func (w *workflow) processRepair(ctx context.Context, src m.SourceFile, dryRun bool) m.FileResult {
	src, res, ok := w.load(src)
	if !ok {
		return res
	}

	text, n := wrappers.Repair(string(src.Content))
	if n == 0 {
		res.Outcome = m.OutcomeUnchanged
		w.logOutcome(res)

		return res
	}

	res.Outcome = m.OutcomeSuccess
	res.Detail = fmt.Sprintf("collapsed %d", n)

	return w.commit(ctx, src, Candidate{Text: text, Repaired: true}, res, dryRun)
}

// load reads src and records its hash. A file that vanished after discovery
// is not_found.
func (w *workflow) load(src m.SourceFile) (m.SourceFile, m.FileResult, bool) {
	res := m.FileResult{Path: src.Rel}

	content, err := w.fsAdapter.ReadFile(src.Path)
	if err != nil {
		res.Outcome = m.OutcomeError
		if errors.Is(err, os.ErrNotExist) {
			res.Outcome = m.OutcomeNotFound
		}

		res.Detail = err.Error()
		res.Err = err
		w.logOutcome(res)

		return src, res, false
	}

	src.Content = content
	src.Hash = adapter.HashBytes(content)
	res.Before = src.Hash

	return src, res, true
}

func (w *workflow) commit(ctx context.Context, src m.SourceFile, cand Candidate, res m.FileResult, dryRun bool) m.FileResult {
	if err := w.orch.Commit(ctx, src, cand, dryRun); err != nil {
		res.Outcome = m.OutcomeError
		if errors.Is(err, ErrInvalidOutput) {
			res.Outcome = m.OutcomeWrapFailed
		}

		res.Functions = nil
		res.Detail = err.Error()
		res.Err = err
		w.logOutcome(res)

		return res
	}

	res.After = adapter.HashBytes([]byte(cand.Text))

	if dryRun {
		res.Diff = wrappers.DiffText(string(src.Rel), string(src.Content), cand.Text)
	}

	w.logOutcome(res)

	return res
}

func (w *workflow) logOutcome(res m.FileResult) {
	fields := []zap.Field{
		zap.String("path", string(res.Path)),
		zap.String("outcome", string(res.Outcome)),
	}

	if res.Detail != "" {
		fields = append(fields, zap.String("detail", res.Detail))
	}

	switch {
	case res.Outcome.Failed():
		w.logger.Warn("file failed", fields...)
	case res.Outcome == m.OutcomeSuccess:
		w.logger.Info("file processed", fields...)
	default:
		w.logger.Debug("file skipped", fields...)
	}
}

func (w *workflow) hasExtension(path string) bool {
	ext := filepath.Ext(path)

	for _, want := range w.cfg.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}

	return false
}

func scanMode(mode string) wrappers.ScanMode {
	if mode == string(wrappers.ScanLiteral) {
		return wrappers.ScanLiteral
	}

	return wrappers.ScanAware
}

// syncObserver serializes observer calls from concurrent workers.
type syncObserver struct {
	mu    sync.Mutex
	inner Observer
}

func newSyncObserver(inner Observer) *syncObserver {
	return &syncObserver{inner: inner}
}

func (o *syncObserver) FileStarted(path m.Path, worker int) {
	if o.inner == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.inner.FileStarted(path, worker)
}

func (o *syncObserver) FileDone(res m.FileResult) {
	if o.inner == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.inner.FileDone(res)
}
