// Package report builds markdown run reports and renders them for terminal display.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
)

// Status of a single scenario.
type Status string

// scenario outcomes.
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Scenario holds the outcome of one test scenario.
type Scenario struct {
	Name     string
	Suite    string // e.g. "dashboard", "editor", "agent"
	Status   Status
	Duration time.Duration
	Message  string // failure message, empty otherwise
}

// Run aggregates a full harness run.
type Run struct {
	Target    string
	Started   time.Time
	Finished  time.Time
	Scenarios []Scenario
}

// Counts returns passed, failed and skipped totals.
func (r *Run) Counts() (passed, failed, skipped int) {
	for _, s := range r.Scenarios {
		switch s.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// Failed reports whether any scenario failed.
func (r *Run) Failed() bool {
	_, failed, _ := r.Counts()
	return failed > 0
}

// BuildMarkdown produces the markdown report for a run, grouped by suite with
// failures listed first inside each group.
func BuildMarkdown(r *Run) string {
	var b strings.Builder

	passed, failed, skipped := r.Counts()

	fmt.Fprintf(&b, "# Studio E2E Report\n\n")
	fmt.Fprintf(&b, "- target: %s\n", r.Target)
	fmt.Fprintf(&b, "- started: %s (%s)\n", r.Started.Format("2006-01-02 15:04:05"), humanize.Time(r.Started))
	fmt.Fprintf(&b, "- duration: %s\n", r.Finished.Sub(r.Started).Round(time.Second))
	fmt.Fprintf(&b, "- results: **%d passed**, **%d failed**, %d skipped\n\n", passed, failed, skipped)

	for _, suite := range suites(r.Scenarios) {
		fmt.Fprintf(&b, "## %s\n\n", suite)
		for _, s := range ordered(r.Scenarios, suite) {
			switch s.Status {
			case StatusFailed:
				fmt.Fprintf(&b, "- ❌ %s (%s)\n", s.Name, s.Duration.Round(time.Millisecond))
				if s.Message != "" {
					fmt.Fprintf(&b, "  - %s\n", s.Message)
				}
			case StatusSkipped:
				fmt.Fprintf(&b, "- ⏭ %s\n", s.Name)
			default:
				fmt.Fprintf(&b, "- ✅ %s (%s)\n", s.Name, s.Duration.Round(time.Millisecond))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// suites returns the distinct suite names in stable sorted order.
func suites(scenarios []Scenario) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range scenarios {
		if _, ok := seen[s.Suite]; ok {
			continue
		}
		seen[s.Suite] = struct{}{}
		out = append(out, s.Suite)
	}
	sort.Strings(out)
	return out
}

// ordered returns the suite's scenarios, failures first, otherwise input order.
func ordered(scenarios []Scenario, suite string) []Scenario {
	var failed, rest []Scenario
	for _, s := range scenarios {
		if s.Suite != suite {
			continue
		}
		if s.Status == StatusFailed {
			failed = append(failed, s)
			continue
		}
		rest = append(rest, s)
	}
	return append(failed, rest...)
}

// Render renders markdown content for terminal display.
// If noColor is true, returns the content unchanged.
// Otherwise, uses glamour to render with auto-detected style and word wrap.
func Render(content string, noColor bool) (string, error) {
	if noColor {
		return content, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	result, err := renderer.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	return result, nil
}
