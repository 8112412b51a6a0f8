package assignment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ecoci/ecoci/internal/domain/agentinfo"
	"github.com/ecoci/ecoci/internal/domain/experiment"
	mock "github.com/ecoci/ecoci/internal/gen/mock/assignment"
)

func queuedExp(name string, requirement string) experiment.Experiment {
	return experiment.Experiment{Name: name, Status: experiment.StatusQueued, Requirement: requirement}
}

func TestNextExperimentPrefersContinuityOverEverythingElse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	experiments := mock.NewMockExperimentStore(ctrl)
	queue := mock.NewMockQueueStore(ctrl)
	crates := mock.NewMockCrateStore(ctrl)
	agents := mock.NewMockAgentStore(ctrl)

	running := experiment.Experiment{Name: "e-running", Status: experiment.StatusRunning}

	crates.EXPECT().ContinuityExperiment(gomock.Any(), "worker-1").Return("e-running", true, nil)
	experiments.EXPECT().Get(gomock.Any(), "e-running").Return(running, nil)

	svc := New(experiments, queue, crates, agents, nil)

	got, ok, err := svc.NextExperiment(context.Background(), agentinfo.Agent{Name: "worker-1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "e-running", got.Name)
}

func TestNextExperimentFallsBackToDistributedQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	experiments := mock.NewMockExperimentStore(ctrl)
	queue := mock.NewMockQueueStore(ctrl)
	crates := mock.NewMockCrateStore(ctrl)
	agents := mock.NewMockAgentStore(ctrl)

	candidate := queuedExp("e-distributed", "")

	crates.EXPECT().ContinuityExperiment(gomock.Any(), "worker-1").Return("", false, nil)
	queue.EXPECT().PinnedCandidates(gomock.Any(), "worker-1").Return(nil, nil)
	queue.EXPECT().DistributedCandidates(gomock.Any()).Return([]experiment.Experiment{candidate}, nil)
	experiments.EXPECT().UpdateStatus(gomock.Any(), "e-distributed", experiment.StatusRunning).Return(nil)

	svc := New(experiments, queue, crates, agents, nil)

	got, ok, err := svc.NextExperiment(context.Background(), agentinfo.Agent{Name: "worker-1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "e-distributed", got.Name)
	assert.Equal(t, experiment.StatusRunning, got.Status)
}

func TestNextExperimentUnassignedStampsDistributedAssignee(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	experiments := mock.NewMockExperimentStore(ctrl)
	queue := mock.NewMockQueueStore(ctrl)
	crates := mock.NewMockCrateStore(ctrl)
	agents := mock.NewMockAgentStore(ctrl)

	candidate := queuedExp("e-unassigned", "")

	crates.EXPECT().ContinuityExperiment(gomock.Any(), "worker-1").Return("", false, nil)
	queue.EXPECT().PinnedCandidates(gomock.Any(), "worker-1").Return(nil, nil)
	queue.EXPECT().DistributedCandidates(gomock.Any()).Return(nil, nil)
	queue.EXPECT().UnassignedCandidates(gomock.Any()).Return([]experiment.Experiment{candidate}, nil)
	experiments.EXPECT().SetAssignee(gomock.Any(), "e-unassigned", experiment.AssigneeDistributed).Return(nil)
	experiments.EXPECT().UpdateStatus(gomock.Any(), "e-unassigned", experiment.StatusRunning).Return(nil)

	svc := New(experiments, queue, crates, agents, nil)

	got, ok, err := svc.NextExperiment(context.Background(), agentinfo.Agent{Name: "worker-1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "e-unassigned", got.Name)
}

func TestNextExperimentSkipsCandidatesMissingRequiredCapability(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	experiments := mock.NewMockExperimentStore(ctrl)
	queue := mock.NewMockQueueStore(ctrl)
	crates := mock.NewMockCrateStore(ctrl)
	agents := mock.NewMockAgentStore(ctrl)

	needsGPU := queuedExp("e-needs-gpu", "gpu")

	crates.EXPECT().ContinuityExperiment(gomock.Any(), "worker-1").Return("", false, nil)
	queue.EXPECT().PinnedCandidates(gomock.Any(), "worker-1").Return([]experiment.Experiment{needsGPU}, nil)
	queue.EXPECT().DistributedCandidates(gomock.Any()).Return(nil, nil)
	queue.EXPECT().UnassignedCandidates(gomock.Any()).Return(nil, nil)

	svc := New(experiments, queue, crates, agents, nil)

	_, ok, err := svc.NextExperiment(context.Background(), agentinfo.Agent{Name: "worker-1", Capabilities: []string{"linux"}})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextExperimentReturnsFalseWhenNothingEligible(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	experiments := mock.NewMockExperimentStore(ctrl)
	queue := mock.NewMockQueueStore(ctrl)
	crates := mock.NewMockCrateStore(ctrl)
	agents := mock.NewMockAgentStore(ctrl)

	crates.EXPECT().ContinuityExperiment(gomock.Any(), "worker-1").Return("", false, nil)
	queue.EXPECT().PinnedCandidates(gomock.Any(), "worker-1").Return(nil, nil)
	queue.EXPECT().DistributedCandidates(gomock.Any()).Return(nil, nil)
	queue.EXPECT().UnassignedCandidates(gomock.Any()).Return(nil, nil)

	svc := New(experiments, queue, crates, agents, nil)

	_, ok, err := svc.NextExperiment(context.Background(), agentinfo.Agent{Name: "worker-1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClaimExperimentOnlyTransitionsQueuedExperiments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	experiments := mock.NewMockExperimentStore(ctrl)
	queue := mock.NewMockQueueStore(ctrl)
	crates := mock.NewMockCrateStore(ctrl)
	agents := mock.NewMockAgentStore(ctrl)

	svc := New(experiments, queue, crates, agents, nil)

	already := experiment.Experiment{Name: "e-already-running", Status: experiment.StatusRunning}
	got, ok, err := svc.claimExperiment(context.Background(), already)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, experiment.StatusRunning, got.Status)
}
