// Package agentclient is the agent process's HTTP client for the
// coordinator's agent-facing API: config, heartbeat, next-experiment,
// next-crate, record-progress, complete-experiment, and error
// reporting. Built on net/http directly — no third-party HTTP client
// is present in this module's dependency closure, and fiber (the
// server-side framework) has no client counterpart.
package agentclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/domain/resultrow"
)

const authScheme = "CraterToken"

// Client talks to one coordinator base URL, authenticating every call
// with the agent's static bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{baseURL: baseURL, token: token, http: &http.Client{Timeout: timeout}}
}

// envelope mirrors the agent-api wire shape every response carries:
// status tags the outcome, result holds the raw payload on success.
type envelope struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", authScheme+" "+c.token)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}

	if env.Status != "success" {
		return fmt.Errorf("%s %s: status %s: %s", method, path, env.Status, env.Error)
	}

	if out == nil || len(env.Result) == 0 {
		return nil
	}

	return json.Unmarshal(env.Result, out)
}

type configRequest struct {
	Capabilities []string `json:"capabilities"`
	GitRevision  string   `json:"git_revision"`
}

type configResponse struct {
	AgentName string            `json:"agent_name"`
	Config    map[string]string `json:"config"`
}

// Config calls config(capabilities), returning the shared config map
// the coordinator hands back.
func (c *Client) Config(ctx context.Context, capabilities []string, gitRevision string) (map[string]string, error) {
	var resp configResponse

	if err := c.do(ctx, http.MethodPost, "/agent-api/config", configRequest{Capabilities: capabilities, GitRevision: gitRevision}, &resp); err != nil {
		return nil, err
	}

	return resp.Config, nil
}

// Heartbeat calls heartbeat().
func (c *Client) Heartbeat(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/agent-api/heartbeat", nil, nil)
}

// NextExperiment polls for the next experiment assignment: the wire
// result is `Experiment | null`, so a nil *experiment.Experiment means
// there is nothing to do right now — callers poll again after a pause,
// not a blocking call.
func (c *Client) NextExperiment(ctx context.Context) (experiment.Experiment, bool, error) {
	var resp *experiment.Experiment

	if err := c.do(ctx, http.MethodPost, "/agent-api/next-experiment", nil, &resp); err != nil {
		return experiment.Experiment{}, false, err
	}

	if resp == nil {
		return experiment.Experiment{}, false, nil
	}

	return *resp, true, nil
}

// NextCrate polls for the next package within exp: the wire result is
// `Package | null`.
func (c *Client) NextCrate(ctx context.Context, exp string) (string, bool, error) {
	var resp *string

	if err := c.do(ctx, http.MethodPost, "/agent-api/experiments/"+exp+"/next-crate", nil, &resp); err != nil {
		return "", false, err
	}

	if resp == nil {
		return "", false, nil
	}

	return *resp, true, nil
}

type recordProgressRequest struct {
	Package        string             `json:"package"`
	Toolchain      string             `json:"toolchain"`
	Outcome        outcome.Outcome    `json:"outcome"`
	LogBase64      string             `json:"log_base64"`
	Encoding       resultrow.Encoding `json:"encoding"`
	ResolvedCommit string             `json:"resolved_commit,omitempty"`
	GitRepo        string             `json:"git_repo,omitempty"`
}

// RecordProgress reports one (package, toolchain) result, base64-encoding
// the plain log bytes for JSON transport.
func (c *Client) RecordProgress(ctx context.Context, exp, pkg, toolchain string, o outcome.Outcome, plainLog []byte, enc resultrow.Encoding) error {
	req := recordProgressRequest{
		Package:   pkg,
		Toolchain: toolchain,
		Outcome:   o,
		LogBase64: base64.StdEncoding.EncodeToString(plainLog),
		Encoding:  enc,
	}

	return c.do(ctx, http.MethodPost, "/agent-api/experiments/"+exp+"/record-progress", req, nil)
}

type recordSHARequest struct {
	GitRepo string `json:"git_repo"`
	Commit  string `json:"commit"`
}

// RecordSHA reports the commit a git-sourced package resolved to
// during prepare.
func (c *Client) RecordSHA(ctx context.Context, exp, repo, commit string) error {
	return c.do(ctx, http.MethodPost, "/agent-api/experiments/"+exp+"/record-sha", recordSHARequest{GitRepo: repo, Commit: commit}, nil)
}

// CompleteExperiment calls complete_experiment(experiment).
func (c *Client) CompleteExperiment(ctx context.Context, exp string) error {
	return c.do(ctx, http.MethodPost, "/agent-api/experiments/"+exp+"/complete", nil, nil)
}

type agentErrorRequest struct {
	Message string `json:"message"`
}

// ReportError surfaces an agent-local failure to the coordinator's
// logs.
func (c *Client) ReportError(ctx context.Context, message string) error {
	return c.do(ctx, http.MethodPost, "/agent-api/error", agentErrorRequest{Message: message}, nil)
}
