package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/domain/resultrow"
)

func row(pkg, tc string, o outcome.Outcome) resultrow.Row {
	return resultrow.Row{Package: pkg, Toolchain: tc, Outcome: o}
}

func TestAnalyzeGroupsByClassification(t *testing.T) {
	rows := []resultrow.Row{
		row("left-pad", "nightly", outcome.TestPass),
		row("left-pad", "beta", outcome.TestPass),
		row("serde", "nightly", outcome.TestPass),
		row("serde", "beta", outcome.BuildFail(outcome.FailCompilerError)),
	}

	report := Analyze(rows, "nightly", "beta")

	assert.Len(t, report.ByClassification[outcome.SameTestPass], 1)
	assert.Len(t, report.ByClassification[outcome.Regressed], 1)
	assert.Equal(t, "serde", report.ByClassification[outcome.Regressed][0].Package)
}

func TestAnalyzePartitionsCompilerErrorIntoRootSetPerCode(t *testing.T) {
	rows := []resultrow.Row{
		row("serde", "nightly", outcome.TestPass),
		row("serde", "beta", outcome.CompilerError(outcome.KindTestFail, []string{"E0308", "E0106"})),
	}

	report := Analyze(rows, "nightly", "beta")

	require.Contains(t, report.RootSet, "compiler-error:E0308")
	require.Contains(t, report.RootSet, "compiler-error:E0106")
	assert.Equal(t, "serde", report.RootSet["compiler-error:E0308"][0].Package)
	assert.Equal(t, "serde", report.RootSet["compiler-error:E0106"][0].Package)
}

func TestAnalyzePartitionsDependsOnIntoDependencyTree(t *testing.T) {
	rows := []resultrow.Row{
		row("downstream", "nightly", outcome.TestPass),
		row("downstream", "beta", outcome.DependsOn(outcome.KindBuildFail, []string{"serde", "tokio"})),
	}

	report := Analyze(rows, "nightly", "beta")

	require.Contains(t, report.DependencyTree, "serde")
	require.Contains(t, report.DependencyTree, "tokio")
	assert.Empty(t, report.RootSet)
}

func TestAnalyzeDoesNotPartitionNonRegressionClassifications(t *testing.T) {
	rows := []resultrow.Row{
		row("left-pad", "nightly", outcome.BuildFail(outcome.FailUnknown)),
		row("left-pad", "beta", outcome.BuildFail(outcome.FailUnknown)),
	}

	report := Analyze(rows, "nightly", "beta")

	assert.Empty(t, report.RootSet)
	assert.Empty(t, report.DependencyTree)
	assert.Len(t, report.ByClassification[outcome.SameBuildFail], 1)
}

func TestAnalyzeUsesFailingSideWhenPartitioning(t *testing.T) {
	rows := []resultrow.Row{
		row("left-pad", "nightly", outcome.BuildFail(outcome.FailICE)),
		row("left-pad", "beta", outcome.TestPass),
	}

	report := Analyze(rows, "nightly", "beta")

	require.Contains(t, report.RootSet, string(outcome.FailICE))
	assert.Equal(t, "left-pad", report.RootSet[string(outcome.FailICE)][0].Package)
}

func TestAnalyzeResultsAreSortedByPackageName(t *testing.T) {
	rows := []resultrow.Row{
		row("zeta", "nightly", outcome.TestPass),
		row("zeta", "beta", outcome.TestPass),
		row("alpha", "nightly", outcome.TestPass),
		row("alpha", "beta", outcome.TestPass),
	}

	report := Analyze(rows, "nightly", "beta")

	same := report.ByClassification[outcome.SameTestPass]
	require.Len(t, same, 2)
	assert.Equal(t, "alpha", same[0].Package)
	assert.Equal(t, "zeta", same[1].Package)
}
