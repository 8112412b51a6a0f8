package rungraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSkipsPackagesSkipCheckReturnsTrueFor(t *testing.T) {
	skip := func(pkg string) bool { return pkg == "already-done" }

	g := Build([]string{"left-pad", "already-done"}, [2]string{"nightly", "beta"}, skip)

	var sawAlreadyDone bool
	for _, n := range g.nodes {
		if n.Package == "already-done" {
			sawAlreadyDone = true
		}
	}

	assert.False(t, sawAlreadyDone)
	assert.Greater(t, len(g.nodes), 1)
}

func TestWalkYieldsPrepareBeforeTasksBeforeCleanupBeforeCompletion(t *testing.T) {
	g := Build([]string{"left-pad"}, [2]string{"nightly", "beta"}, nil)

	n, res := g.Walk("worker-1")
	require.Equal(t, WalkClaimed, res)
	require.Equal(t, KindPrepare, n.Kind)

	// Nothing else is eligible until prepare completes.
	_, res = g.Walk("worker-2")
	assert.Equal(t, WalkBlocked, res)

	g.Complete(n)

	task1, res := g.Walk("worker-2")
	require.Equal(t, WalkClaimed, res)
	require.Equal(t, KindTask, task1.Kind)

	task2, res := g.Walk("worker-3")
	require.Equal(t, WalkClaimed, res)
	require.Equal(t, KindTask, task2.Kind)

	assert.NotEqual(t, task1.Toolchain, task2.Toolchain)

	// Both tasks running: cleanup isn't eligible yet.
	_, res = g.Walk("worker-4")
	assert.Equal(t, WalkBlocked, res)

	g.Complete(task1)
	g.Complete(task2)

	cleanup, res := g.Walk("worker-4")
	require.Equal(t, WalkClaimed, res)
	require.Equal(t, KindCleanup, cleanup.Kind)

	g.Complete(cleanup)

	completed, res := g.Walk("worker-5")
	require.Equal(t, WalkClaimed, res)
	require.Equal(t, KindCrateCompleted, completed.Kind)

	g.Complete(completed)

	_, res = g.Walk("worker-6")
	assert.Equal(t, WalkFinished, res)
}

func TestWalkNeverDoubleClaimsARunningNode(t *testing.T) {
	g := Build([]string{"left-pad"}, [2]string{"nightly", "beta"}, nil)

	first, res := g.Walk("worker-1")
	require.Equal(t, WalkClaimed, res)
	assert.Equal(t, KindPrepare, first.Kind)

	_, res = g.Walk("worker-2")
	assert.Equal(t, WalkBlocked, res)
}

func TestMarkFailedPropagatesToSingleParentChildrenOnly(t *testing.T) {
	g := Build([]string{"left-pad"}, [2]string{"nightly", "beta"}, nil)

	prepare, res := g.Walk("worker-1")
	require.Equal(t, WalkClaimed, res)

	var failed []*Node
	g.MarkFailed(prepare, func(n *Node) { failed = append(failed, n) })

	// Both task nodes have prepare as their only parent, so they fail too.
	require.Len(t, failed, 2)
	for _, n := range failed {
		assert.Equal(t, KindTask, n.Kind)
	}

	// Cleanup has two parents (both tasks); since MarkFailed marks both
	// task nodes done as it propagates, cleanup's dependencies end up
	// satisfied and it becomes the next eligible node, same as if both
	// tasks had completed successfully.
	next, res := g.Walk("worker-2")
	require.Equal(t, WalkClaimed, res)
	assert.Equal(t, KindCleanup, next.Kind)
}

func TestMultiplePackagesShareOneRoot(t *testing.T) {
	g := Build([]string{"a", "b"}, [2]string{"nightly", "beta"}, nil)

	assert.Equal(t, 0, g.root)

	rootChildren := 0
	for _, n := range g.nodes {
		if n.Kind == KindCrateCompleted {
			rootChildren++
		}
	}
	assert.Equal(t, 2, rootChildren)
}
