// Package experiment defines the Experiment and ExperimentCrate
// entities and the experiment lifecycle state machine.
package experiment

import (
	"time"

	"github.com/ecoci/ecoci/internal/domain/toolchain"
)

// Status is the experiment lifecycle state.
type Status string

const (
	StatusQueued           Status = "queued"
	StatusRunning          Status = "running"
	StatusNeedsReport      Status = "needs-report"
	StatusFailed           Status = "failed"
	StatusGeneratingReport Status = "generating-report"
	StatusReportFailed     Status = "report-failed"
	StatusCompleted        Status = "completed"
)

// legalTransitions enumerates the state machine's edges.
// report-failed -> needs-report is an explicit retry action, not an
// automatic transition.
var legalTransitions = map[Status][]Status{
	StatusQueued:           {StatusRunning},
	StatusRunning:          {StatusNeedsReport, StatusFailed},
	StatusNeedsReport:      {StatusGeneratingReport},
	StatusGeneratingReport: {StatusCompleted, StatusReportFailed},
	StatusReportFailed:     {StatusNeedsReport},
	StatusFailed:           {},
	StatusCompleted:        {},
}

// CanTransition reports whether moving from 'from' to 'to' is a legal
// edge of the lifecycle state machine.
func CanTransition(from, to Status) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

// Mode selects which task the task graph executor runs per toolchain.
type Mode string

const (
	ModeBuildAndTest      Mode = "build-and-test"
	ModeBuildOnly         Mode = "build-only"
	ModeCheckOnly         Mode = "check-only"
	ModeLint              Mode = "lint"
	ModeDoc               Mode = "doc"
	ModeUnstableFeatures  Mode = "unstable-features"
)

// LintCap is the compiler-diagnostic severity an experiment in lint
// mode treats as a build failure.
type LintCap string

const (
	LintAllow   LintCap = "allow"
	LintWarn    LintCap = "warn"
	LintDeny    LintCap = "deny"
	LintForbid  LintCap = "forbid"
)

// Assignee identifies who an experiment is pinned to: a specific
// agent name, the literal "cli", the literal "distributed", or unset
// (nil) meaning unassigned.
type Assignee *string

const (
	AssigneeCLI         = "cli"
	AssigneeDistributed = "distributed"
)

// Experiment is the unique-named, persistent job comparing two
// toolchains over a set of packages.
type Experiment struct {
	Name        string               `json:"name"`
	Toolchains  [2]toolchain.Toolchain `json:"toolchains"`
	Mode        Mode                 `json:"mode"`
	LintCap     LintCap              `json:"lint_cap"`
	Priority    int                  `json:"priority"`
	Status      Status               `json:"status"`
	Assignee    *string              `json:"assignee,omitempty"`
	ReportURL   *string              `json:"report_url,omitempty"`
	Requirement string               `json:"requirement,omitempty"`
	IgnoreBlacklist bool             `json:"ignore_blacklist"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// DistinctToolchains reports whether the two toolchains are distinct,
// the invariant enforced at creation and never allowed to be violated
// afterward since the shape is immutable once queued.
func (e Experiment) DistinctToolchains() bool {
	return !e.Toolchains[0].Equal(e.Toolchains[1])
}

// Editable reports whether the experiment's shape (toolchains, mode,
// crates, cap, priority) may still be changed — only true in queued.
func (e Experiment) Editable() bool {
	return e.Status == StatusQueued
}

// CrateStatus is the per-(experiment, package) row state.
type CrateStatus string

const (
	CrateQueued    CrateStatus = "queued"
	CrateRunning   CrateStatus = "running"
	CrateCompleted CrateStatus = "completed"
)

// Crate is the unit of distributed work ownership: one package within
// one experiment.
type Crate struct {
	Experiment string      `json:"experiment"`
	Package    string      `json:"package"`
	Skipped    bool        `json:"skipped"`
	Status     CrateStatus `json:"status"`
	Assignee   *string     `json:"assignee,omitempty"`
}
