package http

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/domain/toolchain"
	"github.com/ecoci/ecoci/pkg/httpresponse"
	"github.com/ecoci/ecoci/pkg/merrors"
	"github.com/ecoci/ecoci/pkg/mlog"
)

var validate = validator.New()

// ExperimentCreator is the subset of the experiment repository the
// admin surface drives. It sits outside the bearer-token agent-api
// group: creating an experiment is the one operation the spec's
// out-of-scope CLI performs through this package's Go API, so this
// handler exists to give that same operation an HTTP entry point an
// operator (or a future CLI) can call directly.
type ExperimentCreator interface {
	Create(ctx context.Context, e experiment.Experiment, pkgIDs []string, blacklisted map[string]bool) error
}

// AdminAPI implements the experiment-creation surface, validated with
// go-playground/validator before anything reaches C1/C3.
type AdminAPI struct {
	experiments ExperimentCreator
	logger      mlog.Logger
}

func NewAdminAPI(experiments ExperimentCreator, logger mlog.Logger) *AdminAPI {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	return &AdminAPI{experiments: experiments, logger: logger}
}

type createExperimentRequest struct {
	Name           string   `json:"name" validate:"required"`
	Toolchain1     string   `json:"toolchain1" validate:"required"`
	Toolchain2     string   `json:"toolchain2" validate:"required"`
	Mode           string   `json:"mode" validate:"required,oneof=build-and-test build-only check-only lint doc unstable-features"`
	LintCap        string   `json:"lint_cap" validate:"omitempty,oneof=allow warn deny forbid"`
	Priority       int      `json:"priority"`
	Assignee       string   `json:"assignee,omitempty"`
	Requirement    string   `json:"requirement,omitempty"`
	IgnoreBlacklist bool    `json:"ignore_blacklist"`
	Packages       []string `json:"packages" validate:"required,min=1"`
}

// CreateExperiment validates and persists a new experiment, rejecting
// a request whose two toolchains are equal (spec's distinct-toolchains
// invariant) before it ever reaches the store.
func (a *AdminAPI) CreateExperiment(c *fiber.Ctx) error {
	var req createExperimentRequest
	if err := c.BodyParser(&req); err != nil {
		return httpresponse.WithError(c, merrors.ValidationError{Message: "malformed create-experiment request body"})
	}

	if err := validate.Struct(req); err != nil {
		return httpresponse.WithError(c, merrors.ValidationError{Message: err.Error()})
	}

	e := experiment.Experiment{
		Name:            req.Name,
		Toolchains:      [2]toolchain.Toolchain{parseRequestToolchain(req.Toolchain1), parseRequestToolchain(req.Toolchain2)},
		Mode:            experiment.Mode(req.Mode),
		LintCap:         experiment.LintCap(req.LintCap),
		Priority:        req.Priority,
		Requirement:     req.Requirement,
		IgnoreBlacklist: req.IgnoreBlacklist,
	}

	if req.Assignee != "" {
		e.Assignee = &req.Assignee
	}

	if !e.DistinctToolchains() {
		return httpresponse.WithError(c, merrors.ValidateBusinessError(merrors.ErrDuplicateToolchain, "experiment"))
	}

	if err := a.experiments.Create(c.UserContext(), e, req.Packages, nil); err != nil {
		return httpresponse.WithError(c, err)
	}

	return c.SendStatus(fiber.StatusCreated)
}

// parseRequestToolchain accepts either a plain distribution channel
// name or a "ci-<commit>"/"ci-<commit>-alt" identifier, mirroring the
// rendering toolchain.Toolchain.Name produces.
func parseRequestToolchain(s string) toolchain.Toolchain {
	const prefix = "ci-"

	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return toolchain.Dist(s)
	}

	rest := s[len(prefix):]

	const altSuffix = "-alt"
	if len(rest) > len(altSuffix) && rest[len(rest)-len(altSuffix):] == altSuffix {
		return toolchain.CICommit(rest[:len(rest)-len(altSuffix)], true)
	}

	return toolchain.CICommit(rest, false)
}
