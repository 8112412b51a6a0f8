// Package lifecycle drives C3's experiment state machine: the
// queued->running transition lives in the assignment service (it
// happens at pick time); this package owns running->needs-report and
// the report-worker's generating-report->completed|report-failed and
// report-failed->needs-report retry.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/pkg/merrors"
)

// ExperimentStore is the subset of the experiment repository this
// service needs.
type ExperimentStore interface {
	Get(ctx context.Context, name string) (experiment.Experiment, error)
	UpdateStatus(ctx context.Context, name string, to experiment.Status) error
}

// CrateStore is the subset of the crate repository this service needs.
type CrateStore interface {
	OutstandingCount(ctx context.Context, exp string) (int, error)
}

// Service applies legal transitions and the running->needs-report rule.
type Service struct {
	experiments ExperimentStore
	crates      CrateStore
}

func New(experiments ExperimentStore, crates CrateStore) *Service {
	return &Service{experiments: experiments, crates: crates}
}

// transition validates the edge against experiment.CanTransition before
// writing it.
func (s *Service) transition(ctx context.Context, name string, to experiment.Status) error {
	e, err := s.experiments.Get(ctx, name)
	if err != nil {
		return err
	}

	if !experiment.CanTransition(e.Status, to) {
		return fmt.Errorf("experiment %q: %w (from %s to %s)", name, merrors.ErrInvalidStateForEdit, e.Status, to)
	}

	return s.experiments.UpdateStatus(ctx, name, to)
}

// CompleteExperiment implements complete_experiment: transitions to
// needs-report only if no experiment-crate rows remain queued or
// running. Returns merrors.ErrReportNotReady if work is outstanding —
// the caller is expected to treat that as a no-op, not a hard failure.
func (s *Service) CompleteExperiment(ctx context.Context, name string) error {
	outstanding, err := s.crates.OutstandingCount(ctx, name)
	if err != nil {
		return err
	}

	if outstanding > 0 {
		return merrors.ErrReportNotReady
	}

	return s.transition(ctx, name, experiment.StatusNeedsReport)
}

// BeginReport is called by the report worker when it picks an
// experiment out of needs-report.
func (s *Service) BeginReport(ctx context.Context, name string) error {
	return s.transition(ctx, name, experiment.StatusGeneratingReport)
}

// FinishReport transitions an experiment out of generating-report: to
// completed on success, to report-failed otherwise.
func (s *Service) FinishReport(ctx context.Context, name string, succeeded bool) error {
	if succeeded {
		return s.transition(ctx, name, experiment.StatusCompleted)
	}

	return s.transition(ctx, name, experiment.StatusReportFailed)
}

// RetryReport moves a report-failed experiment back into needs-report —
// an explicit action, never automatic.
func (s *Service) RetryReport(ctx context.Context, name string) error {
	return s.transition(ctx, name, experiment.StatusNeedsReport)
}

// Edit guards experiment edits to the queued state only.
func (s *Service) Edit(ctx context.Context, name string) (experiment.Experiment, error) {
	e, err := s.experiments.Get(ctx, name)
	if err != nil {
		return experiment.Experiment{}, err
	}

	if !e.Editable() {
		return experiment.Experiment{}, merrors.ErrInvalidStateForEdit
	}

	return e, nil
}
