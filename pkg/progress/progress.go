// Package progress provides timestamped logging to file and stdout with color support.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Phase represents the harness activity for color coding.
type Phase string

// Phase constants for harness stages.
const (
	PhaseDashboard Phase = "dashboard" // dashboard flows (green)
	PhaseEditor    Phase = "editor"    // editor flows (cyan)
	PhaseAgent     Phase = "agent"     // agent mock activity (magenta)
	PhaseCleanup   Phase = "cleanup"   // resource cleanup (blue)
)

// phase colors using fatih/color.
var (
	dashboardColor = color.New(color.FgGreen)
	editorColor    = color.New(color.FgCyan)
	agentColor     = color.New(color.FgMagenta)
	cleanupColor   = color.New(color.FgBlue)
	warnColor      = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed)
	timestampColor = color.New(color.FgWhite)
)

// phaseColors maps phases to their color functions.
var phaseColors = map[Phase]*color.Color{
	PhaseDashboard: dashboardColor,
	PhaseEditor:    editorColor,
	PhaseAgent:     agentColor,
	PhaseCleanup:   cleanupColor,
}

// Logger writes timestamped output to both file and stdout.
type Logger struct {
	file      *os.File
	stdout    io.Writer
	startTime time.Time
	phase     Phase
}

// Config holds logger configuration.
type Config struct {
	Dir     string // directory for the run log (default: current directory)
	Target  string // deployment base URL, recorded in the header
	Label   string // run label (e.g. "cleanup", "e2e"), used in the filename
	NoColor bool   // disable color output (sets color.NoColor globally)
}

// NewLogger creates a logger writing to both a run log file and stdout.
func NewLogger(cfg Config) (*Logger, error) {
	// set global color setting
	if cfg.NoColor {
		color.NoColor = true
	}

	logPath := runLogFilename(cfg.Dir, cfg.Label)

	if dir := filepath.Dir(logPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	f, err := os.Create(logPath) //nolint:gosec // path derived from run label
	if err != nil {
		return nil, fmt.Errorf("create run log: %w", err)
	}

	l := &Logger{
		file:      f,
		stdout:    os.Stdout,
		startTime: time.Now(),
		phase:     PhaseDashboard,
	}

	// write header
	l.writeFile("# Studio E2E Run Log\n")
	l.writeFile("Target: %s\n", cfg.Target)
	l.writeFile("Label: %s\n", cfg.Label)
	l.writeFile("Started: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	l.writeFile("%s\n\n", strings.Repeat("-", 60))

	return l, nil
}

// Path returns the run log file path.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// SetPhase sets the current harness phase for color coding.
func (l *Logger) SetPhase(phase Phase) {
	l.phase = phase
}

// timestampFormat is the format for timestamps: YY-MM-DD HH:MM:SS
const timestampFormat = "06-01-02 15:04:05"

// Print writes a timestamped message to both file and stdout.
func (l *Logger) Print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	// write to file without color
	l.writeFile("[%s] %s\n", timestamp, msg)

	// write to stdout with color
	phaseColor := phaseColors[l.phase]
	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	msgStr := phaseColor.Sprint(msg)
	l.writeStdout("%s %s\n", tsStr, msgStr)
}

// Error writes an error message in red.
func (l *Logger) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	l.writeFile("[%s] ERROR: %s\n", timestamp, msg)

	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	errStr := errorColor.Sprintf("ERROR: %s", msg)
	l.writeStdout("%s %s\n", tsStr, errStr)
}

// Warn writes a warning message in yellow.
func (l *Logger) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	l.writeFile("[%s] WARN: %s\n", timestamp, msg)

	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	warnStr := warnColor.Sprintf("WARN: %s", msg)
	l.writeStdout("%s %s\n", tsStr, warnStr)
}

// Elapsed returns formatted elapsed time since start.
func (l *Logger) Elapsed() string {
	return humanize.RelTime(l.startTime, time.Now(), "", "")
}

// Close writes footer and closes the run log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	l.writeFile("\n%s\n", strings.Repeat("-", 60))
	l.writeFile("Completed: %s (%s)\n", time.Now().Format("2006-01-02 15:04:05"), l.Elapsed())

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close run log: %w", err)
	}
	return nil
}

func (l *Logger) writeFile(format string, args ...any) {
	if l.file != nil {
		fmt.Fprintf(l.file, format, args...)
	}
}

func (l *Logger) writeStdout(format string, args ...any) {
	fmt.Fprintf(l.stdout, format, args...)
}

// runLogFilename returns the run log path for a label, timestamped so
// consecutive runs against the same deployment don't clobber each other.
func runLogFilename(dir, label string) string {
	if label == "" {
		label = "run"
	}
	name := fmt.Sprintf("studio-e2e-%s-%s.log", label, time.Now().Format("20060102-150405"))
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
