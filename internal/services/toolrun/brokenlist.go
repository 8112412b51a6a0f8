package toolrun

import (
	"encoding/json"
	"os"

	"github.com/ecoci/ecoci/internal/domain/outcome"
)

// StaticBrokenList implements BrokenLister against a JSON file mapping
// package identifiers to why they're considered broken outright,
// mirroring the original implementation's static "known broken" crate
// list consulted before any fetch is attempted.
type StaticBrokenList struct {
	entries map[string]outcome.BrokenReason
}

// LoadBrokenList reads path as a JSON object of package-id -> reason
// string ("bad-manifest", "yanked-deps", "missing-deps",
// "missing-git-repo", or "" for unknown). A missing file yields an
// empty list rather than an error, since most deployments have none.
func LoadBrokenList(path string) (*StaticBrokenList, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &StaticBrokenList{entries: map[string]outcome.BrokenReason{}}, nil
	}

	if err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	entries := make(map[string]outcome.BrokenReason, len(raw))

	for pkg, reason := range raw {
		if reason == "" {
			reason = string(outcome.BrokenUnknown)
		}

		entries[pkg] = outcome.BrokenReason(reason)
	}

	return &StaticBrokenList{entries: entries}, nil
}

func (l *StaticBrokenList) IsBroken(pkg string) (outcome.BrokenReason, bool) {
	reason, ok := l.entries[pkg]
	return reason, ok
}
