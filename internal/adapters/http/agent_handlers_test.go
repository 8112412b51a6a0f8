package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoci/ecoci/internal/domain/agentinfo"
	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/domain/resultrow"
	"github.com/ecoci/ecoci/pkg/merrors"
)

type fakeAssignment struct {
	agent      agentinfo.Agent
	exp        experiment.Experiment
	expOK      bool
	pkg        string
	pkgOK      bool
	err        error
	heartbeats int
}

func (f *fakeAssignment) NextExperiment(_ context.Context, _ agentinfo.Agent) (experiment.Experiment, bool, error) {
	return f.exp, f.expOK, f.err
}

func (f *fakeAssignment) NextCrate(_ context.Context, _, _ string) (string, bool, error) {
	return f.pkg, f.pkgOK, f.err
}

func (f *fakeAssignment) Heartbeat(_ context.Context, _ string) error {
	f.heartbeats++
	return f.err
}

func (f *fakeAssignment) AgentByName(_ context.Context, _ string) (agentinfo.Agent, error) {
	return f.agent, f.err
}

type fakeLifecycle struct{ err error }

func (f *fakeLifecycle) CompleteExperiment(_ context.Context, _ string) error { return f.err }

type fakeResultRecorder struct{ err error }

func (f *fakeResultRecorder) RecordResult(_ context.Context, _, _, _ string, _ outcome.Outcome, _ []byte, _ resultrow.Encoding) error {
	return f.err
}

func (f *fakeResultRecorder) RecordSHA(_ context.Context, _, _, _ string) error { return f.err }

type fakeRoster struct{ err error }

func (f *fakeRoster) UpdateCapabilities(_ context.Context, _ string, _ []string, _ string) error {
	return f.err
}

func newTestAgentApp(assignment *fakeAssignment, lifecycle *fakeLifecycle, results *fakeResultRecorder, roster *fakeRoster) *fiber.App {
	api := NewAgentAPI(assignment, lifecycle, results, roster, map[string]string{"k": "v"}, nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("agentName", "worker-1")
		return c.Next()
	})
	app.Post("/agent-api/next-experiment", api.NextExperiment)
	app.Post("/agent-api/experiments/:experiment/next-crate", api.NextCrate)
	app.Post("/agent-api/heartbeat", api.Heartbeat)
	app.Post("/agent-api/config", api.Config)

	return app
}

// rawEnvelope mirrors httpresponse.AgentEnvelope but keeps Result as
// raw JSON so tests can assert on its exact encoded shape.
type rawEnvelope struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) rawEnvelope {
	t.Helper()

	var env rawEnvelope
	require.NoError(t, json.Unmarshal(body, &env))

	return env
}

func TestNextExperimentWrapsSuccessInAgentEnvelope(t *testing.T) {
	assignment := &fakeAssignment{exp: experiment.Experiment{Name: "e1"}, expOK: true}
	app := newTestAgentApp(assignment, &fakeLifecycle{}, &fakeResultRecorder{}, &fakeRoster{})

	req := httptest.NewRequest("POST", "/agent-api/next-experiment", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	env := decodeEnvelope(t, body)

	assert.Equal(t, "success", env.Status)
	assert.Contains(t, string(env.Result), `"name":"e1"`)
}

func TestNextExperimentReturnsNullResultWhenNoneAvailable(t *testing.T) {
	assignment := &fakeAssignment{expOK: false}
	app := newTestAgentApp(assignment, &fakeLifecycle{}, &fakeResultRecorder{}, &fakeRoster{})

	req := httptest.NewRequest("POST", "/agent-api/next-experiment", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	env := decodeEnvelope(t, body)

	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "null", string(env.Result))
}

func TestNextExperimentFailureUsesInternalErrorEnvelope(t *testing.T) {
	assignment := &fakeAssignment{err: merrors.InternalServerError{Message: "boom"}}
	app := newTestAgentApp(assignment, &fakeLifecycle{}, &fakeResultRecorder{}, &fakeRoster{})

	req := httptest.NewRequest("POST", "/agent-api/next-experiment", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	env := decodeEnvelope(t, body)

	assert.Equal(t, "internal-error", env.Status)
	assert.NotEmpty(t, env.Error)
}

func TestNextCrateIsRegisteredAsPost(t *testing.T) {
	assignment := &fakeAssignment{pkg: "left-pad", pkgOK: true}
	app := newTestAgentApp(assignment, &fakeLifecycle{}, &fakeResultRecorder{}, &fakeRoster{})

	req := httptest.NewRequest("POST", "/agent-api/experiments/e1/next-crate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	env := decodeEnvelope(t, body)
	assert.Equal(t, `"left-pad"`, string(env.Result))
}

func TestHeartbeatReturnsAcceptedEnvelope(t *testing.T) {
	assignment := &fakeAssignment{}
	app := newTestAgentApp(assignment, &fakeLifecycle{}, &fakeResultRecorder{}, &fakeRoster{})

	req := httptest.NewRequest("POST", "/agent-api/heartbeat", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, assignment.heartbeats)

	body, _ := io.ReadAll(resp.Body)
	env := decodeEnvelope(t, body)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "true", string(env.Result))
}

func TestConfigRejectsMalformedBodyWithInternalErrorEnvelope(t *testing.T) {
	assignment := &fakeAssignment{}
	app := newTestAgentApp(assignment, &fakeLifecycle{}, &fakeResultRecorder{}, &fakeRoster{})

	req := httptest.NewRequest("POST", "/agent-api/config", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	env := decodeEnvelope(t, body)
	assert.Equal(t, "internal-error", env.Status)
}
