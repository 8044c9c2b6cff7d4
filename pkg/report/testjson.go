package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// testEvent mirrors the records emitted by `go test -json`.
type testEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

// ParseTestJSON builds a Run from a `go test -json` stream. Only leaf test
// results become scenarios; parent tests that merely group subtests are
// skipped. Output lines of failed tests are collected into the scenario
// message.
func ParseTestJSON(r io.Reader, target string) (*Run, error) {
	run := &Run{Target: target}
	output := map[string][]string{} // test name -> output lines
	parents := map[string]bool{}    // tests that have subtests

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ev testEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return nil, fmt.Errorf("parse test event: %w", err)
		}

		if run.Started.IsZero() && !ev.Time.IsZero() {
			run.Started = ev.Time
		}
		if !ev.Time.IsZero() {
			run.Finished = ev.Time
		}
		if ev.Test == "" {
			continue // package-level event
		}

		if parent, ok := parentOf(ev.Test); ok {
			parents[parent] = true
		}

		switch ev.Action {
		case "output":
			output[ev.Test] = append(output[ev.Test], ev.Output)
		case "pass", "fail", "skip":
			run.Scenarios = append(run.Scenarios, Scenario{
				Name:     ev.Test,
				Suite:    suiteOf(ev.Test),
				Status:   statusOf(ev.Action),
				Duration: time.Duration(ev.Elapsed * float64(time.Second)),
				Message:  failureMessage(ev.Action, output[ev.Test]),
			})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read test output: %w", err)
	}

	// drop grouping parents now that all subtests are known
	leafs := run.Scenarios[:0]
	for _, s := range run.Scenarios {
		if !parents[s.Name] {
			leafs = append(leafs, s)
		}
	}
	run.Scenarios = leafs
	return run, nil
}

// suiteOf derives the suite from the top-level test name, e.g.
// "TestDashboard/create_app" -> "dashboard".
func suiteOf(test string) string {
	top := test
	if i := strings.Index(test, "/"); i >= 0 {
		top = test[:i]
	}
	return strings.ToLower(strings.TrimPrefix(top, "Test"))
}

func parentOf(test string) (string, bool) {
	i := strings.LastIndex(test, "/")
	if i < 0 {
		return "", false
	}
	return test[:i], true
}

func statusOf(action string) Status {
	switch action {
	case "fail":
		return StatusFailed
	case "skip":
		return StatusSkipped
	default:
		return StatusPassed
	}
}

// failureMessage joins captured output for failed tests, trimming the
// run/result framing lines go test emits.
func failureMessage(action string, lines []string) string {
	if action != "fail" {
		return ""
	}
	var b strings.Builder
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(trimmed, "=== ") || strings.HasPrefix(trimmed, "--- ") {
			continue
		}
		b.WriteString(l)
	}
	return strings.TrimSpace(b.String())
}
