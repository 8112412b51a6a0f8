package outcome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyUnknownWhenEitherMissing(t *testing.T) {
	pass := TestPass
	assert.Equal(t, ClassUnknown, Classify(nil, nil))
	assert.Equal(t, ClassUnknown, Classify(&pass, nil))
	assert.Equal(t, ClassUnknown, Classify(nil, &pass))
}

func TestClassifyBrokenTakesPriorityOverEverything(t *testing.T) {
	broken := BrokenCrate(BrokenMissingDeps)
	fail := BuildFail(FailICE)

	assert.Equal(t, ClassBroken, Classify(&broken, &fail))
	assert.Equal(t, ClassBroken, Classify(&fail, &broken))
}

func TestClassifyErrorBeatsSkippedAndRegression(t *testing.T) {
	errOut := Error
	pass := TestPass
	skipped := Skipped

	assert.Equal(t, ClassError, Classify(&errOut, &pass))
	assert.Equal(t, ClassError, Classify(&errOut, &skipped))
}

func TestClassifyRegressedVsSpuriousRegressed(t *testing.T) {
	pass := TestPass
	deterministicFail := BuildFail(FailCompilerError)
	spuriousFail := BuildFail(FailOOM)

	assert.Equal(t, Regressed, Classify(&pass, &deterministicFail))
	assert.Equal(t, SpuriousRegressed, Classify(&pass, &spuriousFail))
}

func TestClassifyFixedVsSpuriousFixed(t *testing.T) {
	pass := TestPass
	deterministicFail := TestFail(FailUnknown)
	spuriousFail := TestFail(FailTimeout)

	assert.Equal(t, Fixed, Classify(&deterministicFail, &pass))
	assert.Equal(t, SpuriousFixed, Classify(&spuriousFail, &pass))
}

func TestClassifySameKindBuckets(t *testing.T) {
	buildFail1 := BuildFail(FailICE)
	buildFail2 := BuildFail(FailUnknown)
	assert.Equal(t, SameBuildFail, Classify(&buildFail1, &buildFail2))

	testFail1 := TestFail(FailUnknown)
	testFail2 := TestFail(FailNetworkAccess)
	assert.Equal(t, SameTestFail, Classify(&testFail1, &testFail2))

	skipped1, skipped2 := TestSkipped, TestSkipped
	assert.Equal(t, SameTestSkipped, Classify(&skipped1, &skipped2))

	pass1, pass2 := TestPass, TestPass
	assert.Equal(t, SameTestPass, Classify(&pass1, &pass2))
}

func TestClassifyMismatchedNonPassKindsAreUnknown(t *testing.T) {
	buildFail := BuildFail(FailUnknown)
	testFail := TestFail(FailUnknown)

	assert.Equal(t, ClassUnknown, Classify(&buildFail, &testFail))
}

func TestIsSpuriousAndSpurious(t *testing.T) {
	assert.True(t, IsSpurious(FailOOM))
	assert.True(t, IsSpurious(FailTimeout))
	assert.True(t, IsSpurious(FailNetworkAccess))
	assert.True(t, IsSpurious(FailCompilerDiagnosticChange))
	assert.False(t, IsSpurious(FailUnknown))
	assert.False(t, IsSpurious(FailICE))

	oom := BuildFail(FailOOM)
	assert.True(t, oom.Spurious())

	assert.False(t, TestPass.Spurious())
	assert.False(t, TestSkipped.Spurious())
}

func TestCompilerErrorDedupesAndSorts(t *testing.T) {
	o := CompilerError(KindBuildFail, []string{"E0308", "E0106", "E0308"})

	assert.Equal(t, []string{"E0106", "E0308"}, o.DiagnosticCodes)
	assert.Equal(t, FailCompilerError, o.FailReason)
	assert.True(t, o.IsFailure())
}
