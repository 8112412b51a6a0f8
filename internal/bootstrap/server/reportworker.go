package server

import (
	"context"
	"time"

	"github.com/ecoci/ecoci/internal/adapters/mongodb"
	"github.com/ecoci/ecoci/internal/adapters/rabbitmq"
	"github.com/ecoci/ecoci/internal/bootstrap"
	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/domain/resultrow"
	"github.com/ecoci/ecoci/internal/services/report"
	"github.com/ecoci/ecoci/pkg/mlog"
)

// ExperimentStore is the subset of the experiment repository the
// report worker needs.
type ExperimentStore interface {
	ListNeedsReport(ctx context.Context) ([]experiment.Experiment, error)
	SetReportURL(ctx context.Context, name, url string) error
}

// ResultSource is the subset of the resultstore service the report
// worker needs.
type ResultSource interface {
	ListResults(ctx context.Context, exp string) ([]resultrow.Row, error)
	ListSHAs(ctx context.Context, exp string) ([]resultrow.SHA, error)
	LoadPlainLog(ctx context.Context, exp, tc, pkg string) ([]byte, bool, error)
}

// LifecycleDriver is the subset of the lifecycle service the report
// worker needs.
type LifecycleDriver interface {
	BeginReport(ctx context.Context, name string) error
	FinishReport(ctx context.Context, name string, succeeded bool) error
}

// ReportWorker is the single dedicated process that drains
// needs-report, one experiment at a time, falling back to a fixed
// poll interval when no wake event arrives — the teacher's consumer
// goroutine shape, generalized from an AMQP message handler to a
// report-generation job runner.
type ReportWorker struct {
	experiments ExperimentStore
	results     ResultSource
	lifecycle   LifecycleDriver
	generator   *report.Generator
	waker       *rabbitmq.ReportWaker
	runLog      *mongodb.ReportRunLog
	interval    time.Duration
	logger      mlog.Logger
}

func NewReportWorker(
	experiments ExperimentStore,
	results ResultSource,
	lifecycle LifecycleDriver,
	generator *report.Generator,
	waker *rabbitmq.ReportWaker,
	runLog *mongodb.ReportRunLog,
	interval time.Duration,
	logger mlog.Logger,
) *ReportWorker {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &ReportWorker{
		experiments: experiments,
		results:     results,
		lifecycle:   lifecycle,
		generator:   generator,
		waker:       waker,
		runLog:      runLog,
		interval:    interval,
		logger:      logger,
	}
}

// Run implements bootstrap.App: drain needs-report on every wake event
// and on every tick of interval. It runs on context.Background and
// never returns; the loop ends only when the process exits.
func (w *ReportWorker) Run(l *bootstrap.Launcher) error {
	ctx := context.Background()

	deliveries, err := w.waker.Consume(ctx)
	if err != nil {
		w.logger.Warnf("report worker: wake channel unavailable, falling back to poll-only: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.drain(ctx)

		if deliveries != nil {
			select {
			case <-ticker.C:
			case _, ok := <-deliveries:
				if !ok {
					deliveries = nil
				}
			}
		} else {
			<-ticker.C
		}
	}
}

// drain generates a report for every experiment currently in
// needs-report, oldest first, one at a time.
func (w *ReportWorker) drain(ctx context.Context) {
	pending, err := w.experiments.ListNeedsReport(ctx)
	if err != nil {
		w.logger.Errorf("report worker: list needs-report failed: %v", err)
		return
	}

	for _, exp := range pending {
		w.generateOne(ctx, exp)
	}
}

func (w *ReportWorker) generateOne(ctx context.Context, exp experiment.Experiment) {
	started := time.Now().UTC()

	if err := w.lifecycle.BeginReport(ctx, exp.Name); err != nil {
		w.logger.Errorf("report worker: begin-report(%s) failed: %v", exp.Name, err)
		return
	}

	rows, err := w.results.ListResults(ctx, exp.Name)
	if err != nil {
		w.finish(ctx, exp, started, err)
		return
	}

	shas, err := w.results.ListSHAs(ctx, exp.Name)
	if err != nil {
		w.finish(ctx, exp, started, err)
		return
	}

	logSource := func(pkg, tc string) ([]byte, bool) {
		plain, ok, err := w.results.LoadPlainLog(ctx, exp.Name, tc, pkg)
		if err != nil || !ok {
			return nil, false
		}

		return plain, true
	}

	err = w.generator.Generate(ctx, exp, rows, shas, logSource)
	w.finish(ctx, exp, started, err)
}

func (w *ReportWorker) finish(ctx context.Context, exp experiment.Experiment, started time.Time, genErr error) {
	succeeded := genErr == nil

	if err := w.lifecycle.FinishReport(ctx, exp.Name, succeeded); err != nil {
		w.logger.Errorf("report worker: finish-report(%s) failed: %v", exp.Name, err)
	}

	if succeeded {
		if err := w.experiments.SetReportURL(ctx, exp.Name, reportURLFor(exp.Name)); err != nil {
			w.logger.Errorf("report worker: set-report-url(%s) failed: %v", exp.Name, err)
		}
	} else {
		w.logger.Errorf("report worker: generate(%s) failed: %v", exp.Name, genErr)
	}

	run := mongodb.ReportRun{
		Experiment: exp.Name,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Outcome:    outcomeLabel(succeeded),
		Attempt:    1,
	}

	if genErr != nil {
		run.Error = genErr.Error()
	}

	if err := w.runLog.Record(ctx, run); err != nil {
		w.logger.Errorf("report worker: record report run(%s) failed: %v", exp.Name, err)
	}
}

func outcomeLabel(succeeded bool) string {
	if succeeded {
		return "completed"
	}

	return "report-failed"
}

func reportURLFor(name string) string {
	return "/reports/" + name + "/index.html"
}
