package sandbox

import (
	"bytes"
	"errors"

	"github.com/ecoci/ecoci/internal/domain/outcome"
)

// networkDeniedMarkers are substrings indicating a denied network call
// inside a sandboxed run with networking off.
var networkDeniedMarkers = [][]byte{
	[]byte("Could not resolve host"),
	[]byte("Connection refused"),
	[]byte("Network is unreachable"),
}

// ClassifyFailure inspects a RunResult's error chain and captured log
// to derive the failure reason. Compiler-error diagnostic codes are
// reported separately by CollectDiagnosticCodes; when that set is
// non-empty the caller should prefer outcome.CompilerError over the
// reason this function returns.
func ClassifyFailure(result RunResult) outcome.FailReason {
	switch {
	case errors.Is(result.Err, ErrContainerOOM):
		return outcome.FailOOM
	case isNoOutputTimeout(result.Err):
		return outcome.FailTimeout
	case isAbsoluteTimeout(result.Err):
		return outcome.FailTimeout
	case bytes.Contains(result.Log, []byte("No space left on device")):
		return outcome.FailNoSpace
	case bytes.Contains(result.Log, []byte("internal compiler error")):
		return outcome.FailICE
	case containsAny(result.Log, networkDeniedMarkers):
		return outcome.FailNetworkAccess
	default:
		return outcome.FailUnknown
	}
}

func isNoOutputTimeout(err error) bool {
	var e *noOutputError
	return errors.As(err, &e)
}

func isAbsoluteTimeout(err error) bool {
	var e *timeoutError
	return errors.As(err, &e)
}

func containsAny(haystack []byte, needles [][]byte) bool {
	for _, n := range needles {
		if bytes.Contains(haystack, n) {
			return true
		}
	}

	return false
}
