package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTestJSON(t *testing.T) {
	stream := strings.Join([]string{
		`{"Time":"2026-08-29T10:00:00Z","Action":"run","Package":"e2e","Test":"TestDashboard"}`,
		`{"Time":"2026-08-29T10:00:00Z","Action":"run","Package":"e2e","Test":"TestDashboard/create_app"}`,
		`{"Time":"2026-08-29T10:00:02Z","Action":"pass","Package":"e2e","Test":"TestDashboard/create_app","Elapsed":2.5}`,
		`{"Time":"2026-08-29T10:00:03Z","Action":"run","Package":"e2e","Test":"TestDashboard/delete_app"}`,
		`{"Time":"2026-08-29T10:00:03Z","Action":"output","Package":"e2e","Test":"TestDashboard/delete_app","Output":"--- FAIL: TestDashboard/delete_app (1.00s)\n"}`,
		`{"Time":"2026-08-29T10:00:03Z","Action":"output","Package":"e2e","Test":"TestDashboard/delete_app","Output":"    dashboard_test.go:42: app card still visible\n"}`,
		`{"Time":"2026-08-29T10:00:04Z","Action":"fail","Package":"e2e","Test":"TestDashboard/delete_app","Elapsed":1.0}`,
		`{"Time":"2026-08-29T10:00:05Z","Action":"fail","Package":"e2e","Test":"TestDashboard","Elapsed":5.0}`,
		`{"Time":"2026-08-29T10:00:06Z","Action":"skip","Package":"e2e","Test":"TestAgent","Elapsed":0}`,
		`{"Time":"2026-08-29T10:00:07Z","Action":"fail","Package":"e2e","Elapsed":7.0}`,
	}, "\n")

	run, err := ParseTestJSON(strings.NewReader(stream), "https://studio.example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://studio.example.com", run.Target)
	assert.Equal(t, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC), run.Started)
	assert.Equal(t, time.Date(2026, 8, 29, 10, 0, 7, 0, time.UTC), run.Finished)

	// parent TestDashboard dropped, three leaf scenarios remain
	require.Len(t, run.Scenarios, 3)

	assert.Equal(t, "TestDashboard/create_app", run.Scenarios[0].Name)
	assert.Equal(t, "dashboard", run.Scenarios[0].Suite)
	assert.Equal(t, StatusPassed, run.Scenarios[0].Status)
	assert.Equal(t, 2500*time.Millisecond, run.Scenarios[0].Duration)

	assert.Equal(t, StatusFailed, run.Scenarios[1].Status)
	assert.Contains(t, run.Scenarios[1].Message, "app card still visible")
	assert.NotContains(t, run.Scenarios[1].Message, "--- FAIL")

	assert.Equal(t, "agent", run.Scenarios[2].Suite)
	assert.Equal(t, StatusSkipped, run.Scenarios[2].Status)

	passed, failed, skipped := run.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, skipped)
	assert.True(t, run.Failed())
}

func TestParseTestJSON_Errors(t *testing.T) {
	t.Run("garbage line", func(t *testing.T) {
		_, err := ParseTestJSON(strings.NewReader("not json"), "target")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse test event")
	})

	t.Run("empty stream", func(t *testing.T) {
		run, err := ParseTestJSON(strings.NewReader(""), "target")
		require.NoError(t, err)
		assert.Empty(t, run.Scenarios)
	})
}
