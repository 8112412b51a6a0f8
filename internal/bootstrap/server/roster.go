package server

import (
	"encoding/json"
	"os"

	"github.com/ecoci/ecoci/internal/domain/agentinfo"
)

// rosterEntry is one line of the static token->capability roster file
// synced into the agent table on startup, per the original
// implementation's server/agents.rs: config() calls only ever refine
// capabilities already known to the roster, never admit unknown
// tokens.
type rosterEntry struct {
	Name         string   `json:"name"`
	Token        string   `json:"token"`
	Capabilities []string `json:"capabilities"`
}

// LoadRoster reads path as a JSON array of {name, token, capabilities}
// entries. A missing file yields an empty roster rather than an
// error — a dev deployment may run entirely on ad-hoc tokens added
// later through an admin action outside the core.
func LoadRoster(path string) ([]agentinfo.Agent, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	var entries []rosterEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	out := make([]agentinfo.Agent, 0, len(entries))
	for _, e := range entries {
		out = append(out, agentinfo.Agent{Name: e.Name, Token: e.Token, Capabilities: e.Capabilities})
	}

	return out, nil
}
