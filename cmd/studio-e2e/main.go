// Package main provides the studio-e2e companion tool: stale app cleanup,
// run report rendering and a standalone AI agent mock server for local spec
// development.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/forgekit/studio-e2e/pkg/agentmock"
	"github.com/forgekit/studio-e2e/pkg/client"
	"github.com/forgekit/studio-e2e/pkg/config"
	"github.com/forgekit/studio-e2e/pkg/notify"
	"github.com/forgekit/studio-e2e/pkg/progress"
	"github.com/forgekit/studio-e2e/pkg/report"
)

// opts holds all command-line options.
type opts struct {
	Cleanup    bool   `short:"c" long:"cleanup" description:"delete stale harness-owned apps from the deployment"`
	DryRun     bool   `long:"dry-run" description:"with --cleanup, report what would be deleted without deleting"`
	MaxAge     int    `long:"max-age" description:"with --cleanup, override max app age in hours"`
	Report     string `short:"r" long:"report" description:"render a 'go test -json' output file as a run report"`
	Notify     bool   `short:"n" long:"notify" description:"with --report, send the run outcome through configured channels"`
	ServeAgent bool   `short:"s" long:"serve-agent" description:"run the agent mock server until interrupted"`
	Scripts    string `long:"scripts" description:"with --serve-agent, override the agent scripts directory"`
	NoColor    bool   `long:"no-color" description:"disable color output"`
	Version    bool   `short:"v" long:"version" description:"print version and exit"`
}

var revision = "unknown"

func main() {
	fmt.Printf("studio-e2e %s\n", revision)

	var o opts
	parser := flags.NewParser(&o, flags.Default)
	parser.Usage = "[OPTIONS]"

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if o.Version {
		os.Exit(0)
	}

	// setup context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	restore := quietCtrlC()
	defer restore()

	if err := run(ctx, o); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o opts) error {
	cfg, err := config.Load("") // empty string uses default location
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch {
	case o.Report != "":
		return renderReport(ctx, cfg, o)
	case o.ServeAgent:
		return serveAgent(ctx, cfg, o)
	case o.Cleanup:
		return runCleanup(ctx, cfg, o)
	default:
		return errors.New("nothing to do, pass --cleanup, --report or --serve-agent")
	}
}

// runCleanup deletes stale harness-owned apps and reports the outcome through
// the configured notification channels.
func runCleanup(ctx context.Context, cfg *config.Config, o opts) error {
	log, err := progress.NewLogger(progress.Config{
		Target:  cfg.BaseURL,
		Label:   "cleanup",
		NoColor: o.NoColor,
	})
	if err != nil {
		return fmt.Errorf("create progress logger: %w", err)
	}
	defer log.Close()
	log.SetPhase(progress.PhaseCleanup)

	maxAgeHours := cfg.CleanupMaxAgeHours
	if o.MaxAge > 0 {
		maxAgeHours = o.MaxAge
	}

	api := client.New(cfg.BaseURL, cfg.APIToken, 30*time.Second)
	cleaner, err := client.NewCleaner(api, client.CleanerParams{
		Prefix: cfg.CleanupPrefix,
		MaxAge: time.Duration(maxAgeHours) * time.Hour,
		DryRun: o.DryRun,
	}, log)
	if err != nil {
		return fmt.Errorf("create cleaner: %w", err)
	}

	notifier, err := makeNotifier(cfg, log)
	if err != nil {
		return fmt.Errorf("create notifier: %w", err)
	}

	stats, err := cleaner.Run(ctx)
	if err != nil {
		notifier.Send(ctx, notify.Result{
			Status: "failure",
			Target: cfg.BaseURL,
			Suite:  "cleanup",
			Error:  err.Error(),
		})
		return fmt.Errorf("cleanup: %w", err)
	}

	log.Print("cleanup done: scanned %d, deleted %d, kept %d, failed %d",
		stats.Scanned, stats.Deleted, stats.Kept, stats.Failed)

	status := "success"
	if stats.Failed > 0 {
		status = "failure"
	}
	notifier.Send(ctx, notify.Result{
		Status:      status,
		Target:      cfg.BaseURL,
		Suite:       "cleanup",
		Duration:    log.Elapsed(),
		AppsDeleted: stats.Deleted,
	})
	return nil
}

// renderReport parses a `go test -json` output file, prints a styled markdown
// report to the terminal and optionally notifies the configured channels.
func renderReport(ctx context.Context, cfg *config.Config, o opts) error {
	f, err := os.Open(o.Report)
	if err != nil {
		return fmt.Errorf("open report input: %w", err)
	}
	defer f.Close()

	run, err := report.ParseTestJSON(f, cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("parse test output: %w", err)
	}

	rendered, err := report.Render(report.BuildMarkdown(run), o.NoColor)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	fmt.Print(rendered)

	if o.Notify {
		if err := notifyRun(ctx, cfg, o, run); err != nil {
			return err
		}
	}

	if run.Failed() {
		return errors.New("run had failures")
	}
	return nil
}

func notifyRun(ctx context.Context, cfg *config.Config, o opts, run *report.Run) error {
	log, err := progress.NewLogger(progress.Config{
		Target:  cfg.BaseURL,
		Label:   "report",
		NoColor: o.NoColor,
	})
	if err != nil {
		return fmt.Errorf("create progress logger: %w", err)
	}
	defer log.Close()

	notifier, err := makeNotifier(cfg, log)
	if err != nil {
		return fmt.Errorf("create notifier: %w", err)
	}

	passed, failed, skipped := run.Counts()
	status := "success"
	if run.Failed() {
		status = "failure"
	}
	notifier.Send(ctx, notify.Result{
		Status:   status,
		Target:   cfg.BaseURL,
		Suite:    "e2e",
		Duration: run.Finished.Sub(run.Started).Round(time.Second).String(),
		Passed:   passed,
		Failed:   failed,
		Skipped:  skipped,
	})
	return nil
}

// serveAgent runs the agent mock standalone so specs under development can
// point at a stable local endpoint.
func serveAgent(ctx context.Context, cfg *config.Config, o opts) error {
	scriptsDir := cfg.AgentScriptsDir
	if o.Scripts != "" {
		scriptsDir = o.Scripts
	}

	scripts, err := agentmock.LoadScripts(scriptsDir)
	if err != nil {
		return fmt.Errorf("load agent scripts: %w", err)
	}

	log, err := progress.NewLogger(progress.Config{
		Target:  cfg.BaseURL,
		Label:   "agent",
		NoColor: o.NoColor,
	})
	if err != nil {
		return fmt.Errorf("create progress logger: %w", err)
	}
	defer log.Close()
	log.SetPhase(progress.PhaseAgent)

	srv := agentmock.NewServer(scripts)
	url, err := srv.Start()
	if err != nil {
		return fmt.Errorf("start agent mock: %w", err)
	}
	log.Print("agent mock listening on %s with %d scripts", url, len(scripts))

	<-ctx.Done()
	log.Print("agent mock served %d requests", srv.Requests())
	return srv.Close()
}

func makeNotifier(cfg *config.Config, log *progress.Logger) (*notify.Service, error) {
	return notify.New(notify.Params{
		Channels:      cfg.NotifyChannels,
		OnError:       cfg.NotifyOnError,
		OnComplete:    cfg.NotifyOnComplete,
		TelegramToken: cfg.TelegramToken,
		TelegramChat:  cfg.TelegramChat,
		SlackToken:    cfg.SlackToken,
		SlackChannel:  cfg.SlackChannel,
		WebhookURLs:   cfg.WebhookURLs,
	}, log)
}
