package toolrun

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/services/logsink"
	"github.com/ecoci/ecoci/internal/services/sandbox"
	"github.com/ecoci/ecoci/pkg/mlog"
)

func TestCargoArgsPerMode(t *testing.T) {
	cases := []struct {
		mode experiment.Mode
		cap  experiment.LintCap
		want []string
	}{
		{experiment.ModeBuildAndTest, "", []string{"+nightly", "test", "--all", "--all-targets"}},
		{experiment.ModeBuildOnly, "", []string{"+nightly", "build", "--all", "--all-targets"}},
		{experiment.ModeCheckOnly, "", []string{"+nightly", "check", "--all", "--all-targets"}},
		{experiment.ModeDoc, "", []string{"+nightly", "doc", "--all", "--no-deps"}},
		{experiment.ModeLint, "", []string{"+nightly", "clippy", "--all", "--all-targets", "--"}},
		{experiment.ModeLint, experiment.LintDeny, []string{"+nightly", "clippy", "--all", "--all-targets", "--", "-D", "deny"}},
	}

	for _, c := range cases {
		got := cargoArgs(c.mode, "nightly", c.cap)
		assert.Equal(t, c.want, got, c.mode)
	}
}

func TestScanUnstableFeaturesAlwaysPassesAndCollectsDistinctFeatures(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.rs"), []byte("#![feature(test)]\n#![feature(box_syntax, box_patterns)]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.rs"), []byte("#[feature(test)]\nfn main() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("#![feature(ignored)]\n"), 0o644))

	sink := logsink.New(mlog.InfoLevel, 4096, 100)

	o := scanUnstableFeatures(dir, sink)

	assert.Equal(t, outcome.TestPass, o)

	got := string(sink.Bytes())
	assert.Contains(t, got, "unstable-feature: test")
	assert.Contains(t, got, "unstable-feature: box_syntax")
	assert.Contains(t, got, "unstable-feature: box_patterns")
	assert.NotContains(t, got, "ignored")
}

func TestClassifyPassWhenExitZeroAndNoError(t *testing.T) {
	o := classify(sandbox.RunResult{ExitCode: 0}, experiment.ModeBuildAndTest)
	assert.Equal(t, outcome.TestPass, o)
}

func TestClassifyPrefersCompilerErrorOverGenericFailureReason(t *testing.T) {
	result := sandbox.RunResult{
		ExitCode: 101,
		Log:      []byte("error[E0308]: mismatched types\nerror[E0308]: mismatched types\n"),
	}

	o := classify(result, experiment.ModeBuildOnly)

	assert.Equal(t, outcome.KindBuildFail, o.Kind)
	assert.Equal(t, outcome.FailCompilerError, o.FailReason)
	assert.Equal(t, []string{"E0308"}, o.DiagnosticCodes)
}

func TestClassifyFallsBackToFailureReasonWhenNoDiagnosticCodes(t *testing.T) {
	result := sandbox.RunResult{ExitCode: 1, Err: sandbox.ErrContainerOOM}

	o := classify(result, experiment.ModeBuildAndTest)

	assert.Equal(t, outcome.KindTestFail, o.Kind)
	assert.Equal(t, outcome.FailOOM, o.FailReason)
}

func TestClassifyKindFollowsModeForNonTestModes(t *testing.T) {
	result := sandbox.RunResult{ExitCode: 1}

	for _, mode := range []experiment.Mode{experiment.ModeBuildOnly, experiment.ModeCheckOnly, experiment.ModeLint, experiment.ModeDoc} {
		o := classify(result, mode)
		assert.Equal(t, outcome.KindBuildFail, o.Kind, mode)
	}

	o := classify(result, experiment.ModeBuildAndTest)
	assert.Equal(t, outcome.KindTestFail, o.Kind)
}
