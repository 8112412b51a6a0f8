// Package agentinfo defines the Agent row entity synchronized from a
// static token roster on server startup.
package agentinfo

import "time"

// Agent is a registered worker identity: its liveness, the git
// revision it's running, and the capability set it advertised at
// config() time.
type Agent struct {
	Name          string    `json:"name"`
	Token         string    `json:"-"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	GitRevision   string    `json:"git_revision"`
	Capabilities  []string  `json:"capabilities"`
}

// HasCapabilities reports whether this agent advertises every
// capability in required — the subset check the selection
// algorithm applies against an experiment's requirement tag.
func (a Agent) HasCapabilities(required []string) bool {
	have := make(map[string]bool, len(a.Capabilities))
	for _, c := range a.Capabilities {
		have[c] = true
	}

	for _, r := range required {
		if r == "" {
			continue
		}

		if !have[r] {
			return false
		}
	}

	return true
}

// StaleAfter is the default missed-heartbeat threshold past which an
// administrative action may reset the agent's running crate rows back
// to queued. Not automatic in the core; an explicit at-most-once concern.
const StaleAfter = 300 * time.Second

// IsStale reports whether now is past StaleAfter since the agent's
// last heartbeat.
func (a Agent) IsStale(now time.Time) bool {
	return now.Sub(a.LastHeartbeat) > StaleAfter
}
