package client

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cleaner removes stale harness-owned apps from a deployment. Apps are
// harness-owned when their name carries the configured prefix; age is judged
// by UpdatedAt so a long-running suite doesn't lose its apps mid-run.
type Cleaner struct {
	client *Client
	log    logger
	prefix string
	maxAge time.Duration
	dryRun bool
}

// logger is the minimal logging surface the cleaner needs.
type logger interface {
	Print(format string, args ...any)
	Warn(format string, args ...any)
}

// CleanerParams configures a Cleaner.
type CleanerParams struct {
	Prefix string        // required, refuse to run with an empty prefix
	MaxAge time.Duration // apps younger than this are kept
	DryRun bool          // report what would be deleted without deleting
}

// Stats summarizes a cleanup run.
type Stats struct {
	Scanned int
	Deleted int
	Kept    int
	Failed  int
}

// NewCleaner creates a Cleaner. An empty prefix is rejected: without one the
// cleaner would delete every app on the deployment.
func NewCleaner(c *Client, p CleanerParams, log logger) (*Cleaner, error) {
	if strings.TrimSpace(p.Prefix) == "" {
		return nil, fmt.Errorf("cleanup prefix must not be empty")
	}
	return &Cleaner{
		client: c,
		log:    log,
		prefix: p.Prefix,
		maxAge: p.MaxAge,
		dryRun: p.DryRun,
	}, nil
}

// Run scans apps and deletes stale harness-owned ones. Individual delete
// failures are logged and counted, not fatal: leftover apps are what the next
// cleanup run is for.
func (c *Cleaner) Run(ctx context.Context) (Stats, error) {
	apps, err := c.client.ListApps(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("scan apps: %w", err)
	}

	var stats Stats
	cutoff := time.Now().Add(-c.maxAge)

	for _, app := range apps {
		if !strings.HasPrefix(app.Name, c.prefix) {
			continue
		}
		stats.Scanned++

		if app.UpdatedAt.After(cutoff) {
			stats.Kept++
			continue
		}

		if c.dryRun {
			c.log.Print("would delete %s (%s, last updated %s)", app.Name, app.ID, app.UpdatedAt.Format(time.RFC3339))
			stats.Deleted++
			continue
		}

		if err := c.client.DeleteApp(ctx, app.ID); err != nil {
			c.log.Warn("delete %s failed: %v", app.Name, err)
			stats.Failed++
			continue
		}
		c.log.Print("deleted %s (%s)", app.Name, app.ID)
		stats.Deleted++
	}

	return stats, nil
}
