package sandbox

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ecoci/ecoci/internal/domain/outcome"
)

func TestClassifyFailureOOM(t *testing.T) {
	result := RunResult{Err: ErrContainerOOM}
	assert.Equal(t, outcome.FailOOM, ClassifyFailure(result))
}

func TestClassifyFailureNoOutputTimeout(t *testing.T) {
	result := RunResult{Err: errNoOutputTimeout(5 * time.Minute)}
	assert.Equal(t, outcome.FailTimeout, ClassifyFailure(result))
}

func TestClassifyFailureAbsoluteTimeout(t *testing.T) {
	result := RunResult{Err: errAbsoluteTimeout(errors.New("context deadline exceeded"))}
	assert.Equal(t, outcome.FailTimeout, ClassifyFailure(result))
}

func TestClassifyFailureNoSpaceFromLog(t *testing.T) {
	result := RunResult{Log: []byte("error: No space left on device")}
	assert.Equal(t, outcome.FailNoSpace, ClassifyFailure(result))
}

func TestClassifyFailureInternalCompilerError(t *testing.T) {
	result := RunResult{Log: []byte("thread 'rustc' panicked: internal compiler error: ...")}
	assert.Equal(t, outcome.FailICE, ClassifyFailure(result))
}

func TestClassifyFailureNetworkDenied(t *testing.T) {
	for _, marker := range []string{"Could not resolve host", "Connection refused", "Network is unreachable"} {
		result := RunResult{Log: []byte("curl: (6) " + marker)}
		assert.Equal(t, outcome.FailNetworkAccess, ClassifyFailure(result), marker)
	}
}

func TestClassifyFailureFallsBackToUnknown(t *testing.T) {
	result := RunResult{Log: []byte("error: mismatched types"), Err: errors.New("exit status 101")}
	assert.Equal(t, outcome.FailUnknown, ClassifyFailure(result))
}

func TestClassifyFailurePriorityOOMOverLogMarkers(t *testing.T) {
	result := RunResult{Err: ErrContainerOOM, Log: []byte("No space left on device")}
	assert.Equal(t, outcome.FailOOM, ClassifyFailure(result))
}
