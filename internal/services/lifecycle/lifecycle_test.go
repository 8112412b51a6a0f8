package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/pkg/merrors"
)

type fakeExperiments struct {
	status experiment.Status
}

func (f *fakeExperiments) Get(_ context.Context, _ string) (experiment.Experiment, error) {
	return experiment.Experiment{Name: "e1", Status: f.status}, nil
}

func (f *fakeExperiments) UpdateStatus(_ context.Context, _ string, to experiment.Status) error {
	f.status = to
	return nil
}

type fakeCrates struct {
	outstanding int
}

func (f *fakeCrates) OutstandingCount(_ context.Context, _ string) (int, error) {
	return f.outstanding, nil
}

func TestCompleteExperimentRejectsWhenWorkOutstanding(t *testing.T) {
	experiments := &fakeExperiments{status: experiment.StatusRunning}
	crates := &fakeCrates{outstanding: 3}
	svc := New(experiments, crates)

	err := svc.CompleteExperiment(context.Background(), "e1")

	assert.ErrorIs(t, err, merrors.ErrReportNotReady)
	assert.Equal(t, experiment.StatusRunning, experiments.status)
}

func TestCompleteExperimentTransitionsToNeedsReportWhenClear(t *testing.T) {
	experiments := &fakeExperiments{status: experiment.StatusRunning}
	crates := &fakeCrates{outstanding: 0}
	svc := New(experiments, crates)

	require.NoError(t, svc.CompleteExperiment(context.Background(), "e1"))
	assert.Equal(t, experiment.StatusNeedsReport, experiments.status)
}

func TestReportLifecycleHappyPath(t *testing.T) {
	experiments := &fakeExperiments{status: experiment.StatusNeedsReport}
	svc := New(experiments, &fakeCrates{})

	require.NoError(t, svc.BeginReport(context.Background(), "e1"))
	assert.Equal(t, experiment.StatusGeneratingReport, experiments.status)

	require.NoError(t, svc.FinishReport(context.Background(), "e1", true))
	assert.Equal(t, experiment.StatusCompleted, experiments.status)
}

func TestFinishReportFailurePathAllowsRetry(t *testing.T) {
	experiments := &fakeExperiments{status: experiment.StatusGeneratingReport}
	svc := New(experiments, &fakeCrates{})

	require.NoError(t, svc.FinishReport(context.Background(), "e1", false))
	assert.Equal(t, experiment.StatusReportFailed, experiments.status)

	require.NoError(t, svc.RetryReport(context.Background(), "e1"))
	assert.Equal(t, experiment.StatusNeedsReport, experiments.status)
}

func TestTransitionRejectsIllegalEdge(t *testing.T) {
	experiments := &fakeExperiments{status: experiment.StatusCompleted}
	svc := New(experiments, &fakeCrates{})

	err := svc.BeginReport(context.Background(), "e1")

	assert.ErrorIs(t, err, merrors.ErrInvalidStateForEdit)
	assert.Equal(t, experiment.StatusCompleted, experiments.status)
}

func TestEditOnlyAllowedWhenQueued(t *testing.T) {
	queued := &fakeExperiments{status: experiment.StatusQueued}
	svc := New(queued, &fakeCrates{})
	_, err := svc.Edit(context.Background(), "e1")
	require.NoError(t, err)

	running := &fakeExperiments{status: experiment.StatusRunning}
	svc = New(running, &fakeCrates{})
	_, err = svc.Edit(context.Background(), "e1")
	assert.ErrorIs(t, err, merrors.ErrInvalidStateForEdit)
}
