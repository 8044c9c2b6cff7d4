package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger collects log lines for assertions.
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) Print(format string, args ...any) { l.add(format, args...) }
func (l *testLogger) Warn(format string, args ...any)  { l.add("WARN: "+format, args...) }

func (l *testLogger) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func cleanerFixtureServer(t *testing.T, deleted *[]string) *httptest.Server {
	t.Helper()

	now := time.Now()
	apps := []App{
		{ID: "a1", Name: "e2e-stale", UpdatedAt: now.Add(-10 * time.Hour)},
		{ID: "a2", Name: "e2e-fresh", UpdatedAt: now.Add(-10 * time.Minute)},
		{ID: "a3", Name: "customer-app", UpdatedAt: now.Add(-100 * time.Hour)},
		{ID: "a4", Name: "e2e-ancient", UpdatedAt: now.Add(-72 * time.Hour)},
	}

	var mu sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/apps":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"apps": apps})
		case r.Method == http.MethodDelete:
			mu.Lock()
			*deleted = append(*deleted, r.URL.Path)
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestNewCleaner_EmptyPrefixRejected(t *testing.T) {
	_, err := NewCleaner(New("http://localhost", "", time.Second), CleanerParams{Prefix: "  "}, &testLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefix")
}

func TestCleaner_Run(t *testing.T) {
	var deleted []string
	srv := cleanerFixtureServer(t, &deleted)
	defer srv.Close()

	log := &testLogger{}
	cleaner, err := NewCleaner(New(srv.URL, "tok", time.Second),
		CleanerParams{Prefix: "e2e-", MaxAge: 4 * time.Hour}, log)
	require.NoError(t, err)

	stats, err := cleaner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Scanned, "only prefixed apps are scanned")
	assert.Equal(t, 2, stats.Deleted)
	assert.Equal(t, 1, stats.Kept)
	assert.Equal(t, 0, stats.Failed)
	assert.ElementsMatch(t, []string{"/api/apps/a1", "/api/apps/a4"}, deleted)
}

func TestCleaner_DryRun(t *testing.T) {
	var deleted []string
	srv := cleanerFixtureServer(t, &deleted)
	defer srv.Close()

	log := &testLogger{}
	cleaner, err := NewCleaner(New(srv.URL, "tok", time.Second),
		CleanerParams{Prefix: "e2e-", MaxAge: 4 * time.Hour, DryRun: true}, log)
	require.NoError(t, err)

	stats, err := cleaner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Deleted)
	assert.Empty(t, deleted, "dry run must not delete")
	require.NotEmpty(t, log.lines)
	assert.Contains(t, log.lines[0], "would delete")
}

func TestCleaner_DeleteFailureCounted(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"apps": []App{
				{ID: "a1", Name: "e2e-stuck", UpdatedAt: now.Add(-10 * time.Hour)},
			}})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"storage locked"}`))
	}))
	defer srv.Close()

	log := &testLogger{}
	cleaner, err := NewCleaner(New(srv.URL, "tok", time.Second),
		CleanerParams{Prefix: "e2e-", MaxAge: time.Hour}, log)
	require.NoError(t, err)

	stats, err := cleaner.Run(context.Background())
	require.NoError(t, err, "individual delete failures are not fatal")
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Deleted)
}
