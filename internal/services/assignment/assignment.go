// Package assignment implements the server-side selection algorithm of
// which experiment and which crate an agent receives next, with
// continuity, pinning, and at-most-once guarantees.
package assignment

import (
	"context"

	"github.com/ecoci/ecoci/internal/domain/agentinfo"
	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/pkg/merrors"
	"github.com/ecoci/ecoci/pkg/mlog"
)

//go:generate mockgen --destination=../../../internal/gen/mock/assignment/assignment_mock.go --package=mock . ExperimentStore,QueueStore,CrateStore,AgentStore

// ExperimentStore is the subset of the experiment repository this
// service needs.
type ExperimentStore interface {
	Get(ctx context.Context, name string) (experiment.Experiment, error)
	UpdateStatus(ctx context.Context, name string, to experiment.Status) error
	SetAssignee(ctx context.Context, name, assignee string) error
}

// QueueStore is the subset of the queue repository this service needs.
type QueueStore interface {
	PinnedCandidates(ctx context.Context, agent string) ([]experiment.Experiment, error)
	DistributedCandidates(ctx context.Context) ([]experiment.Experiment, error)
	UnassignedCandidates(ctx context.Context) ([]experiment.Experiment, error)
}

// CrateStore is the subset of the crate repository this service needs.
type CrateStore interface {
	ContinuityExperiment(ctx context.Context, agent string) (string, bool, error)
	ClaimNextCrate(ctx context.Context, exp, agent string) (string, bool, error)
}

// AgentStore is the subset of the agent repository this service needs.
type AgentStore interface {
	ByToken(ctx context.Context, token string) (agentinfo.Agent, bool, error)
	ByName(ctx context.Context, name string) (agentinfo.Agent, bool, error)
	Heartbeat(ctx context.Context, name string) error
}

// Service picks work for agents per the selection algorithm.
type Service struct {
	experiments ExperimentStore
	queue       QueueStore
	crates      CrateStore
	agents      AgentStore
	logger      mlog.Logger
}

func New(experiments ExperimentStore, queue QueueStore, crates CrateStore, agents AgentStore, logger mlog.Logger) *Service {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	return &Service{experiments: experiments, queue: queue, crates: crates, agents: agents, logger: logger}
}

// firstEligible returns the first candidate whose requirement tag is a
// subset of the agent's advertised capabilities.
func firstEligible(candidates []experiment.Experiment, agent agentinfo.Agent) (experiment.Experiment, bool) {
	for _, e := range candidates {
		if agent.HasCapabilities([]string{e.Requirement}) {
			return e, true
		}
	}

	return experiment.Experiment{}, false
}

// NextExperiment implements the five-step selection algorithm: it never
// blocks — an agent polling at a fixed interval is the caller's
// responsibility, not this service's.
func (s *Service) NextExperiment(ctx context.Context, agent agentinfo.Agent) (experiment.Experiment, bool, error) {
	// Step 1: continuity.
	if name, ok, err := s.crates.ContinuityExperiment(ctx, agent.Name); err != nil {
		return experiment.Experiment{}, false, err
	} else if ok {
		e, err := s.experiments.Get(ctx, name)
		return e, true, err
	}

	// Step 2: agent-pinned queue.
	pinned, err := s.queue.PinnedCandidates(ctx, agent.Name)
	if err != nil {
		return experiment.Experiment{}, false, err
	}

	if e, ok := firstEligible(pinned, agent); ok {
		return s.claimExperiment(ctx, e)
	}

	// Step 3: distributed queue.
	distributed, err := s.queue.DistributedCandidates(ctx)
	if err != nil {
		return experiment.Experiment{}, false, err
	}

	if e, ok := firstEligible(distributed, agent); ok {
		return s.claimExperiment(ctx, e)
	}

	// Step 4: unassigned queue — stamp assignee = "distributed" on pick.
	unassigned, err := s.queue.UnassignedCandidates(ctx)
	if err != nil {
		return experiment.Experiment{}, false, err
	}

	e, ok := firstEligible(unassigned, agent)
	if !ok {
		return experiment.Experiment{}, false, nil
	}

	if err := s.experiments.SetAssignee(ctx, e.Name, experiment.AssigneeDistributed); err != nil {
		return experiment.Experiment{}, false, err
	}

	return s.claimExperiment(ctx, e)
}

// claimExperiment implements step 5: queued -> running on first pick.
func (s *Service) claimExperiment(ctx context.Context, e experiment.Experiment) (experiment.Experiment, bool, error) {
	if e.Status != experiment.StatusQueued {
		return e, true, nil
	}

	if err := s.experiments.UpdateStatus(ctx, e.Name, experiment.StatusRunning); err != nil {
		return experiment.Experiment{}, false, err
	}

	e.Status = experiment.StatusRunning
	s.logger.Infof("experiment %q transitioned to running", e.Name)

	return e, true, nil
}

// NextCrate hands out one package id for exp to agent, or ok=false if
// the slice is exhausted. The claim is a single transactional
// queued->running update scoped by (experiment, package).
func (s *Service) NextCrate(ctx context.Context, exp, agent string) (string, bool, error) {
	return s.crates.ClaimNextCrate(ctx, exp, agent)
}

// Heartbeat records liveness for agent, returning ErrAgentNotFound if
// the name isn't in the roster.
func (s *Service) Heartbeat(ctx context.Context, agent string) error {
	if err := s.agents.Heartbeat(ctx, agent); err != nil {
		return merrors.ValidateBusinessError(err, "agent")
	}

	return nil
}

// Authenticate resolves a bearer token to its agent, the contract the
// HTTP adapter's middleware calls on every agent-api request.
func (s *Service) Authenticate(ctx context.Context, token string) (agentinfo.Agent, error) {
	a, ok, err := s.agents.ByToken(ctx, token)
	if err != nil {
		return agentinfo.Agent{}, err
	}

	if !ok {
		return agentinfo.Agent{}, merrors.ErrAgentTokenUnknown
	}

	return a, nil
}

// AgentByName resolves the full roster entry for a name the auth
// middleware has already authenticated, so later handlers don't need
// to re-present the bearer token.
func (s *Service) AgentByName(ctx context.Context, name string) (agentinfo.Agent, error) {
	a, ok, err := s.agents.ByName(ctx, name)
	if err != nil {
		return agentinfo.Agent{}, err
	}

	if !ok {
		return agentinfo.Agent{}, merrors.ErrAgentNotFound
	}

	return a, nil
}
