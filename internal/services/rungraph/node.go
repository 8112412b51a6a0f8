// Package rungraph implements C5: the per-agent task graph executor.
// One graph is built per experiment slice. For each package, Prepare
// feeds two BuildOrTest nodes (one per toolchain), both feed Cleanup,
// which feeds a CrateCompleted node hanging off a single Root shared by
// every package in the slice.
package rungraph

import "github.com/ecoci/ecoci/internal/services/logsink"

// Kind discriminates node types; the work a KindTask node runs varies by experiment.Mode.
type Kind string

const (
	KindRoot           Kind = "root"
	KindPrepare        Kind = "prepare"
	KindTask           Kind = "task" // BuildAndTest | BuildOnly | CheckOnly | Lint | Doc | UnstableFeatures
	KindCleanup        Kind = "cleanup"
	KindCrateCompleted Kind = "crate-completed"
)

// status is a node's claim state within the shared DAG.
type status int

const (
	statusPending status = iota
	statusRunning
	statusDone
)

// Node is one unit of work in the graph. children/parents are indices
// into the owning Graph's nodes slice, mirroring an adjacency-list DAG.
type Node struct {
	Kind     Kind
	Package  string
	Toolchain string // set only for Kind == KindTask

	id         int
	status     status
	claimant   string
	parents    []int
	children   []int
	prepareLog *logsink.Sink // set by runPrepare on Kind == KindPrepare; forked by each sibling's runTask
}

// ID is a stable identifier for logging/debugging, not used for
// scheduling decisions.
func (n *Node) ID() int { return n.id }
