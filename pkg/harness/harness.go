// Package harness provides the browser plumbing shared by all e2e specs:
// Playwright lifecycle, per-test contexts, condition-based wait helpers, and
// download capture.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/playwright-community/playwright-go"

	"github.com/forgekit/studio-e2e/pkg/config"
)

// Harness owns the Playwright and browser instances for a test run.
// Create one in TestMain and share it; contexts give per-test isolation.
type Harness struct {
	Cfg *config.Config

	pw      *playwright.Playwright
	browser playwright.Browser
	mu      sync.Mutex

	downloadsDir string
	artifactsDir string
}

// New installs Playwright if needed, starts it and launches Chromium.
func New(cfg *config.Config) (*Harness, error) {
	if err := playwright.Install(); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("run playwright: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}
	// slow motion helps visual observation when running headful
	if !cfg.Headless && cfg.SlowMoMs > 0 {
		opts.SlowMo = playwright.Float(float64(cfg.SlowMoMs))
	}

	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	downloadsDir := cfg.DownloadsDir
	if downloadsDir == "" {
		downloadsDir, err = os.MkdirTemp("", "studio-e2e-downloads-*")
		if err != nil {
			_ = browser.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("create downloads dir: %w", err)
		}
	}

	return &Harness{
		Cfg:          cfg,
		pw:           pw,
		browser:      browser,
		downloadsDir: downloadsDir,
		artifactsDir: "artifacts",
	}, nil
}

// DownloadsDir returns the directory downloads are saved into.
func (h *Harness) DownloadsDir() string { return h.downloadsDir }

// Close shuts down the browser and Playwright.
func (h *Harness) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.browser != nil {
		_ = h.browser.Close()
	}
	if h.pw != nil {
		_ = h.pw.Stop()
	}
}

// NewContext creates an isolated browser context for a test. each test gets
// its own context to ensure isolation (separate cookies, storage). the context
// accepts downloads and is closed via t.Cleanup.
func (h *Harness) NewContext(t *testing.T) playwright.BrowserContext {
	t.Helper()

	ctx, err := h.browser.NewContext(playwright.BrowserNewContextOptions{
		AcceptDownloads: playwright.Bool(true),
		Permissions:     []string{"clipboard-read", "clipboard-write"},
	})
	if err != nil {
		t.Fatalf("create browser context: %v", err)
	}
	ctx.SetDefaultTimeout(float64(h.Cfg.ActionTimeoutMs))
	ctx.SetDefaultNavigationTimeout(float64(h.Cfg.NavTimeoutMs))

	t.Cleanup(func() { _ = ctx.Close() })
	return ctx
}

// NewPage creates an isolated context and page for a test. on failure a
// full-page screenshot is written under artifacts/ before teardown.
func (h *Harness) NewPage(t *testing.T) playwright.Page {
	t.Helper()

	ctx := h.NewContext(t)
	page, err := ctx.NewPage()
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	t.Cleanup(func() {
		if t.Failed() {
			h.captureScreenshot(t, page)
		}
		_ = page.Close()
	})
	return page
}

// captureScreenshot saves a failure screenshot named after the test.
func (h *Harness) captureScreenshot(t *testing.T, page playwright.Page) {
	t.Helper()

	if err := os.MkdirAll(h.artifactsDir, 0o750); err != nil {
		t.Logf("create artifacts dir: %v", err)
		return
	}

	name := strings.ReplaceAll(t.Name(), "/", "_") + ".png"
	path := filepath.Join(h.artifactsDir, name)
	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		t.Logf("failure screenshot: %v", err)
		return
	}
	t.Logf("failure screenshot saved to %s", path)
}
