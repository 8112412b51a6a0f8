package http

import (
	"context"
	"encoding/base64"

	"github.com/gofiber/fiber/v2"

	"github.com/ecoci/ecoci/internal/domain/agentinfo"
	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/domain/resultrow"
	"github.com/ecoci/ecoci/pkg/httpresponse"
	"github.com/ecoci/ecoci/pkg/merrors"
	"github.com/ecoci/ecoci/pkg/mlog"
)

// Assignment is the subset of the assignment service the HTTP adapter
// drives.
type Assignment interface {
	NextExperiment(ctx context.Context, agent agentinfo.Agent) (experiment.Experiment, bool, error)
	NextCrate(ctx context.Context, exp, agent string) (string, bool, error)
	Heartbeat(ctx context.Context, agent string) error
	AgentByName(ctx context.Context, name string) (agentinfo.Agent, error)
}

// Lifecycle is the subset of the lifecycle service the HTTP adapter
// drives.
type Lifecycle interface {
	CompleteExperiment(ctx context.Context, name string) error
}

// ResultRecorder is the subset of the resultstore service the HTTP
// adapter drives.
type ResultRecorder interface {
	RecordResult(ctx context.Context, exp, tc, pkg string, o outcome.Outcome, plain []byte, enc resultrow.Encoding) error
	RecordSHA(ctx context.Context, exp, repo, commit string) error
}

// AgentRoster upserts capability sets on config().
type AgentRoster interface {
	UpdateCapabilities(ctx context.Context, name string, capabilities []string, gitRevision string) error
}

// AgentAPI implements the agent-facing endpoints: config, heartbeat,
// next-experiment, next-crate, record-progress, complete-experiment,
// and error reporting.
type AgentAPI struct {
	assignment Assignment
	lifecycle  Lifecycle
	results    ResultRecorder
	roster     AgentRoster
	logger     mlog.Logger
	sharedCfg  map[string]string
}

func NewAgentAPI(assignment Assignment, lifecycle Lifecycle, results ResultRecorder, roster AgentRoster, sharedCfg map[string]string, logger mlog.Logger) *AgentAPI {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	return &AgentAPI{assignment: assignment, lifecycle: lifecycle, results: results, roster: roster, sharedCfg: sharedCfg, logger: logger}
}

type configRequest struct {
	Capabilities []string `json:"capabilities"`
	GitRevision  string   `json:"git_revision"`
}

type configResponse struct {
	AgentName string            `json:"agent_name"`
	Config    map[string]string `json:"config"`
}

// Config implements config(capabilities): the agent name is whatever
// WithAgentAuth already resolved from the bearer token, so this call
// only refines capabilities and shared config, never mints identity.
func (a *AgentAPI) Config(c *fiber.Ctx) error {
	var req configRequest
	if err := c.BodyParser(&req); err != nil {
		return httpresponse.WithAgentError(c, merrors.ValidationError{Message: "malformed config request body"})
	}

	name := httpresponse.AgentNameFromLocals(c)

	if err := a.roster.UpdateCapabilities(c.UserContext(), name, req.Capabilities, req.GitRevision); err != nil {
		return httpresponse.WithAgentError(c, err)
	}

	return httpresponse.AgentOK(c, configResponse{AgentName: name, Config: a.sharedCfg})
}

// Heartbeat implements heartbeat().
func (a *AgentAPI) Heartbeat(c *fiber.Ctx) error {
	name := httpresponse.AgentNameFromLocals(c)

	if err := a.assignment.Heartbeat(c.UserContext(), name); err != nil {
		return httpresponse.WithAgentError(c, err)
	}

	return httpresponse.AgentAccepted(c)
}

// NextExperiment implements next_experiment(): a single non-blocking
// poll returning `Experiment | null` — the agent's fixed-interval retry
// loop lives on the agent side, not in this handler.
func (a *AgentAPI) NextExperiment(c *fiber.Ctx) error {
	name := httpresponse.AgentNameFromLocals(c)

	agent, err := a.assignment.AgentByName(c.UserContext(), name)
	if err != nil {
		return httpresponse.WithAgentError(c, err)
	}

	exp, ok, err := a.assignment.NextExperiment(c.UserContext(), agent)
	if err != nil {
		return httpresponse.WithAgentError(c, err)
	}

	if !ok {
		return httpresponse.AgentOK(c, nil)
	}

	return httpresponse.AgentOK(c, exp)
}

// NextCrate implements next_crate(experiment), returning `Package |
// null`.
func (a *AgentAPI) NextCrate(c *fiber.Ctx) error {
	name := httpresponse.AgentNameFromLocals(c)
	exp := c.Params("experiment")

	pkg, ok, err := a.assignment.NextCrate(c.UserContext(), exp, name)
	if err != nil {
		return httpresponse.WithAgentError(c, err)
	}

	if !ok {
		return httpresponse.AgentOK(c, nil)
	}

	return httpresponse.AgentOK(c, pkg)
}

type recordProgressRequest struct {
	Package        string             `json:"package"`
	Toolchain      string             `json:"toolchain"`
	Outcome        outcome.Outcome    `json:"outcome"`
	LogBase64      string             `json:"log_base64"`
	Encoding       resultrow.Encoding `json:"encoding"`
	ResolvedCommit string             `json:"resolved_commit,omitempty"`
	GitRepo        string             `json:"git_repo,omitempty"`
}

// RecordProgress implements record_progress(experiment, pkg, toolchain,
// outcome, log_bytes, optional version-update): the log arrives
// base64-encoded over JSON, decoded here before it reaches the result
// store's own encoding layer.
func (a *AgentAPI) RecordProgress(c *fiber.Ctx) error {
	exp := c.Params("experiment")

	var req recordProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return httpresponse.WithAgentError(c, merrors.ValidationError{Message: "malformed record-progress request body"})
	}

	log, err := base64.StdEncoding.DecodeString(req.LogBase64)
	if err != nil {
		return httpresponse.WithAgentError(c, merrors.ValidationError{Message: "log_base64 is not valid base64"})
	}

	if req.Encoding == "" {
		req.Encoding = resultrow.EncodingPlain
	}

	if err := a.results.RecordResult(c.UserContext(), exp, req.Toolchain, req.Package, req.Outcome, log, req.Encoding); err != nil {
		return httpresponse.WithAgentError(c, err)
	}

	if req.GitRepo != "" && req.ResolvedCommit != "" {
		if err := a.results.RecordSHA(c.UserContext(), exp, req.GitRepo, req.ResolvedCommit); err != nil {
			return httpresponse.WithAgentError(c, err)
		}
	}

	return httpresponse.AgentAccepted(c)
}

type recordSHARequest struct {
	GitRepo string `json:"git_repo"`
	Commit  string `json:"commit"`
}

// RecordSHA persists the commit a git-sourced package resolved to
// during prepare, ahead of (and independent from) the per-toolchain
// record-progress calls for the same package.
func (a *AgentAPI) RecordSHA(c *fiber.Ctx) error {
	exp := c.Params("experiment")

	var req recordSHARequest
	if err := c.BodyParser(&req); err != nil {
		return httpresponse.WithAgentError(c, merrors.ValidationError{Message: "malformed record-sha request body"})
	}

	if req.GitRepo == "" || req.Commit == "" {
		return httpresponse.WithAgentError(c, merrors.ValidationError{Message: "git_repo and commit are required"})
	}

	if err := a.results.RecordSHA(c.UserContext(), exp, req.GitRepo, req.Commit); err != nil {
		return httpresponse.WithAgentError(c, err)
	}

	return httpresponse.AgentAccepted(c)
}

// CompleteExperiment implements complete_experiment(experiment): a
// failed attempt to transition (work still outstanding) is reported as
// an internal-error envelope, same as any other lifecycle rejection.
func (a *AgentAPI) CompleteExperiment(c *fiber.Ctx) error {
	exp := c.Params("experiment")

	if err := a.lifecycle.CompleteExperiment(c.UserContext(), exp); err != nil {
		return httpresponse.WithAgentError(c, err)
	}

	return httpresponse.AgentAccepted(c)
}

type agentErrorRequest struct {
	Message string `json:"message"`
}

// ReportError implements the agent's error-reporting call: surfaced to
// operators via structured logging, never persisted as a result row.
func (a *AgentAPI) ReportError(c *fiber.Ctx) error {
	name := httpresponse.AgentNameFromLocals(c)

	var req agentErrorRequest
	if err := c.BodyParser(&req); err != nil {
		return httpresponse.WithAgentError(c, merrors.ValidationError{Message: "malformed error report body"})
	}

	a.logger.Errorf("agent %q reported error: %s", name, req.Message)

	return httpresponse.AgentAccepted(c)
}
