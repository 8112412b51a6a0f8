package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "completed", outcomeLabel(true))
	assert.Equal(t, "report-failed", outcomeLabel(false))
}

func TestReportURLFor(t *testing.T) {
	assert.Equal(t, "/reports/my-experiment/index.html", reportURLFor("my-experiment"))
}
