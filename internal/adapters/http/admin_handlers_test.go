package http

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoci/ecoci/internal/domain/experiment"
)

type fakeExperimentCreator struct {
	created experiment.Experiment
	pkgIDs  []string
	calls   int
	err     error
}

func (f *fakeExperimentCreator) Create(_ context.Context, e experiment.Experiment, pkgIDs []string, _ map[string]bool) error {
	f.calls++
	f.created = e
	f.pkgIDs = pkgIDs
	return f.err
}

func newTestAdminApp(creator *fakeExperimentCreator) *fiber.App {
	admin := NewAdminAPI(creator, nil)

	app := fiber.New()
	app.Post("/admin-api/experiments", admin.CreateExperiment)

	return app
}

func TestCreateExperimentHappyPath(t *testing.T) {
	creator := &fakeExperimentCreator{}
	app := newTestAdminApp(creator)

	body := `{"name":"e1","toolchain1":"nightly","toolchain2":"ci-abc123","mode":"build-and-test","packages":["left-pad"]}`
	req := httptest.NewRequest("POST", "/admin-api/experiments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, creator.calls)
	assert.Equal(t, "e1", creator.created.Name)
	assert.Equal(t, []string{"left-pad"}, creator.pkgIDs)
	assert.True(t, creator.created.DistinctToolchains())
}

func TestCreateExperimentRejectsDuplicateToolchains(t *testing.T) {
	creator := &fakeExperimentCreator{}
	app := newTestAdminApp(creator)

	body := `{"name":"e1","toolchain1":"nightly","toolchain2":"nightly","mode":"build-and-test","packages":["left-pad"]}`
	req := httptest.NewRequest("POST", "/admin-api/experiments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.NotEqual(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 0, creator.calls)
}

func TestCreateExperimentRejectsMissingRequiredFields(t *testing.T) {
	creator := &fakeExperimentCreator{}
	app := newTestAdminApp(creator)

	body := `{"name":"","toolchain1":"","toolchain2":"","mode":"","packages":[]}`
	req := httptest.NewRequest("POST", "/admin-api/experiments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, creator.calls)
}

func TestCreateExperimentRejectsUnknownMode(t *testing.T) {
	creator := &fakeExperimentCreator{}
	app := newTestAdminApp(creator)

	body := `{"name":"e1","toolchain1":"nightly","toolchain2":"beta","mode":"bogus-mode","packages":["left-pad"]}`
	req := httptest.NewRequest("POST", "/admin-api/experiments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, creator.calls)
}

func TestCreateExperimentRejectsMalformedBody(t *testing.T) {
	creator := &fakeExperimentCreator{}
	app := newTestAdminApp(creator)

	req := httptest.NewRequest("POST", "/admin-api/experiments", bytes.NewBufferString(`not json`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, creator.calls)
}

func TestParseRequestToolchainVariants(t *testing.T) {
	dist := parseRequestToolchain("nightly")
	assert.Equal(t, "nightly", dist.Name())

	ci := parseRequestToolchain("ci-abc123")
	assert.Equal(t, "ci-abc123", ci.Name())

	ciAlt := parseRequestToolchain("ci-abc123-alt")
	assert.Equal(t, "ci-abc123-alt", ciAlt.Name())
}
