package rungraph

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/services/logsink"
	"github.com/ecoci/ecoci/pkg/mlog"
)

const (
	prepareMaxRetries   = 15
	prepareRetryWait    = 3 * time.Second
	secondToolchainRetries = 5
)

// Preparer fetches a package into its cached location and, for git
// packages, resolves and records the commit SHA. A nil error with a
// non-nil override communicates an outcome override (e.g.
// missing manifest -> broken-crate(bad-manifest)).
type Preparer interface {
	Prepare(ctx context.Context, pkg string, log *logsink.Sink) (override *outcome.Outcome, err error)
}

// ToolchainRunner executes the mode-selected task for one toolchain,
// returning the outcome directly (the sandboxed runner's failure
// classification is already folded in by the caller's adapter).
type ToolchainRunner interface {
	Run(ctx context.Context, pkg, toolchain string, mode experiment.Mode, log *logsink.Sink) outcome.Outcome
}

// Cleaner removes per-package sandboxed state.
type Cleaner interface {
	Cleanup(ctx context.Context, pkg string) error
}

// recordResultFunc closes over resultstore.Store.RecordResult and its
// chosen log encoding, keeping this package's dependency surface
// narrow (it never imports resultrow directly).
type recordResultFunc func(ctx context.Context, exp, tc, pkg string, o outcome.Outcome, plain []byte) error

// Worker runs one node to completion. Multiple Workers cooperate over
// one Graph via Walk/Complete/MarkFailed.
type Worker struct {
	name            string
	exp             string
	graph           *Graph
	prep            Preparer
	task            ToolchainRunner
	clean           Cleaner
	record          recordResultFunc
	diskDirty       func() bool
	diskClear       func()
	logger          mlog.Logger
	mode            experiment.Mode
	secondToolchain string
}

func NewWorker(
	name, exp string,
	graph *Graph,
	prep Preparer,
	task ToolchainRunner,
	clean Cleaner,
	record recordResultFunc,
	mode experiment.Mode,
	secondToolchain string,
	diskDirty func() bool,
	diskClear func(),
	logger mlog.Logger,
) *Worker {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	return &Worker{
		name: name, exp: exp, graph: graph, prep: prep, task: task, clean: clean,
		record: record, mode: mode, secondToolchain: secondToolchain,
		diskDirty: diskDirty, diskClear: diskClear, logger: logger,
	}
}

// Run loops Walk/execute/Complete until the graph reports finished.
// Between tasks it consults the disk watchdog's flag and purges its own
// build directory when set.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if w.diskDirty != nil && w.diskDirty() {
			_ = w.clean.Cleanup(ctx, "") // per-worker build dir, not a specific package
			w.diskClear()
		}

		node, result := w.graph.Walk(w.name)

		switch result {
		case WalkFinished:
			return
		case WalkBlocked:
			time.Sleep(50 * time.Millisecond)
			continue
		case WalkClaimed:
			w.execute(ctx, node)
			w.graph.Complete(node)
		}
	}
}

func (w *Worker) execute(ctx context.Context, n *Node) {
	switch n.Kind {
	case KindPrepare:
		w.runPrepare(ctx, n)
	case KindTask:
		w.runTask(ctx, n)
	case KindCleanup:
		if err := w.clean.Cleanup(ctx, n.Package); err != nil {
			w.logger.Errorf("cleanup(%s) failed: %v", n.Package, err)
		}
	case KindCrateCompleted:
		// Nothing to do: both toolchain results were recorded by
		// runTask already, and resultstore.Store marks the crate row
		// completed as a side effect of the second RecordResult call.
	}
}

func (w *Worker) runPrepare(ctx context.Context, n *Node) {
	sink := logsink.New(mlog.InfoLevel, 4*1024*1024, 100_000)
	n.prepareLog = sink

	var (
		override *outcome.Outcome
		err      error
	)

	for attempt := 1; ; attempt++ {
		override, err = w.prep.Prepare(ctx, n.Package, sink)
		if err == nil {
			return
		}

		if attempt >= prepareMaxRetries || !strings.Contains(string(sink.Bytes()), "No space left on device") {
			break
		}

		time.Sleep(prepareRetryWait)
	}

	w.failCrate(ctx, n, prepareOutcome(override, err))
}

// prepareOutcome resolves the outcome-override rule: the first
// matching override wins; otherwise error, unless the error chain
// tags the package as configured "broken".
func prepareOutcome(override *outcome.Outcome, err error) outcome.Outcome {
	if override != nil {
		return *override
	}

	var broken brokenPackageError
	if errors.As(err, &broken) {
		return outcome.BrokenCrate(outcome.BrokenUnknown)
	}

	return outcome.Error
}

// brokenPackageError is returned by a Preparer when the package itself
// is configured "broken" rather than merely failing to fetch.
type brokenPackageError struct{}

func (brokenPackageError) Error() string { return "package is configured broken" }

// failCrate implements the "entire crate subtree" failure: writes the
// given outcome for every toolchain and recursively fails descendants
// with a single parent via MarkFailed. Cleanup has both task nodes as
// parents, so MarkFailed does not fail it; failCrate runs Cleanup
// directly here, and the Cleanup node, whose parents are now done, is
// still claimed and run through the graph afterwards.
func (w *Worker) failCrate(ctx context.Context, prepareNode *Node, o outcome.Outcome) {
	toolchains := map[string]bool{}

	w.graph.MarkFailed(prepareNode, func(child *Node) {
		if child.Kind == KindTask {
			toolchains[child.Toolchain] = true
		}
	})

	for tc := range toolchains {
		if err := w.record(ctx, w.exp, tc, prepareNode.Package, o, nil); err != nil {
			w.logger.Errorf("record failed outcome for %s/%s: %v", prepareNode.Package, tc, err)
		}
	}

	if err := w.clean.Cleanup(ctx, prepareNode.Package); err != nil {
		w.logger.Errorf("cleanup(%s) failed after prepare failure: %v", prepareNode.Package, err)
	}
}

// runTask executes one BuildOrTest node. A failure on the
// second-listed toolchain is retried (regressions must be
// reproducible); a first-toolchain failure is not retried.
func (w *Worker) runTask(ctx context.Context, n *Node) {
	sink := w.prepareSinkFor(n).Duplicate()

	o := w.task.Run(ctx, n.Package, n.Toolchain, w.mode, sink)

	if o.IsFailure() && w.isSecondToolchain(n) {
		for attempt := 1; attempt < secondToolchainRetries && o.IsFailure(); attempt++ {
			sink = w.prepareSinkFor(n).Duplicate()
			o = w.task.Run(ctx, n.Package, n.Toolchain, w.mode, sink)
		}
	}

	if err := w.record(ctx, w.exp, n.Toolchain, n.Package, o, sink.Bytes()); err != nil {
		w.logger.Errorf("record result for %s/%s: %v", n.Package, n.Toolchain, err)
	}
}

// prepareSinkFor returns n's Prepare parent's captured log, the shared
// storage each BuildOrTest task forks via Duplicate so that toolchain
// output never leaks between siblings while the prepare step's output
// still appears in both.
func (w *Worker) prepareSinkFor(n *Node) *logsink.Sink {
	for _, parentID := range n.parents {
		if parent := w.graph.nodes[parentID]; parent.Kind == KindPrepare && parent.prepareLog != nil {
			return parent.prepareLog
		}
	}

	return logsink.New(mlog.InfoLevel, 4*1024*1024, 100_000)
}

// isSecondToolchain reports whether n belongs to the experiment's
// second-listed toolchain. Identity, not completion order, decides
// retry eligibility: only the second toolchain's failures are retried,
// regardless of which toolchain's task happens to finish first.
func (w *Worker) isSecondToolchain(n *Node) bool {
	return n.Toolchain == w.secondToolchain
}
