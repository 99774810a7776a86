package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanJSONRoundTrip(t *testing.T) {
	plan := &Plan{
		Actions: []Action{
			{Type: AddIgnoreRule, Source: "vendor", Risk: Low, Reason: "vendor dir"},
			{Type: Delete, Source: "old/backup.php.bak", Risk: Low, Reason: "backup naming pattern"},
			{Type: Move, Source: "a.php", Destination: "legacy/a.php", Risk: High, Reason: "manual review", Conflict: true},
		},
		CreatedAt:  "2024-06-01T12:00:00Z",
		ProjectDir: "/srv/app",
	}

	data, err := MarshalPlan(plan)
	require.NoError(t, err)

	back, err := UnmarshalPlan(data)
	require.NoError(t, err)
	assert.Equal(t, plan, back)
}

func TestUnmarshalPlanRejectsInvalidActions(t *testing.T) {
	raw := []byte(`{
		"actions": [
			{"action_type": "MOVE", "source": "a.php", "risk_level": "LOW", "reason": "relocate"}
		],
		"created_at": "2024-06-01T12:00:00Z",
		"project_dir": "/srv/app"
	}`)

	_, err := UnmarshalPlan(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid action")
}

func TestPlanSummarize(t *testing.T) {
	plan := &Plan{
		Actions: []Action{
			{Type: Delete, Source: "a", Risk: Low, Reason: "x"},
			{Type: Delete, Source: "b", Risk: Medium, Reason: "x"},
			{Type: Move, Source: "c", Destination: "d", Risk: High, Reason: "x"},
			{Type: ReportOnly, Source: "e", Risk: Low, Reason: "x"},
		},
	}

	s := plan.Summarize()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.ByRisk[Low])
	assert.Equal(t, 1, s.ByRisk[Medium])
	assert.Equal(t, 1, s.ByRisk[High])
	assert.Equal(t, 2, s.ByType[Delete])
	assert.Equal(t, 1, s.ByType[Move])
	assert.Equal(t, 0, s.ByType[AddIgnoreRule])
	assert.Equal(t, 1, s.ByType[ReportOnly])
}

func TestPlanSummarizeEmpty(t *testing.T) {
	s := (&Plan{}).Summarize()
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.ByRisk[High])
}
