package editor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/harness"
)

// OpenConsole opens the console drawer at the bottom of the editor.
func (h *Helper) OpenConsole(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#console-toggle").Click(), "open console")
	harness.WaitVisible(t, h.Page, "#console-panel.open")
}

// CloseConsole collapses the console drawer.
func (h *Helper) CloseConsole(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#console-toggle").Click(), "close console")
	harness.WaitHidden(t, h.Page, "#console-panel.open")
}

// ConsoleLines returns the visible console rows, optionally restricted to a
// level ("log", "warn", "error"). filtered-out rows are removed from the DOM,
// not hidden.
func (h *Helper) ConsoleLines(level string) playwright.Locator {
	sel := "#console-panel .console-line"
	if level != "" {
		sel = fmt.Sprintf("#console-panel .console-line.console-%s", level)
	}
	return h.Page.Locator(sel)
}

// WaitConsoleLine waits for a console line containing substr and returns its
// full text. preview output arrives async, so the long timeout applies.
func (h *Helper) WaitConsoleLine(t *testing.T, substr string) string {
	t.Helper()

	lines := h.ConsoleLines("")
	var found string
	require.Eventually(t, func() bool {
		count, err := lines.Count()
		if err != nil {
			return false
		}
		for i := 0; i < count; i++ {
			text, err := lines.Nth(i).TextContent()
			if err == nil && strings.Contains(text, substr) {
				found = text
				return true
			}
		}
		return false
	}, harness.LongPollTimeout, harness.LongPollInterval, "console never showed %q", substr)
	return found
}

// FilterConsole restricts the console to one level ("" resets to all).
func (h *Helper) FilterConsole(t *testing.T, level string) {
	t.Helper()

	if level == "" {
		level = "all"
	}
	btn := h.Page.Locator(fmt.Sprintf(".console-filter[data-level=%q]", level))
	require.NoError(t, btn.Click(), "filter console to %s", level)
	harness.WaitForClass(t, btn, "active")
}

// ClearConsole wipes all console lines.
func (h *Helper) ClearConsole(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#console-clear").Click(), "clear console")
	harness.WaitForCount(t, h.ConsoleLines(""), 0)
}

// CopyConsoleLine copies the nth line to the clipboard via its copy button
// and returns the clipboard text. the browser context must hold clipboard
// permissions (harness.NewContext grants them).
func (h *Helper) CopyConsoleLine(t *testing.T, nth int) string {
	t.Helper()

	line := h.ConsoleLines("").Nth(nth)
	require.NoError(t, line.Hover(), "hover line")
	require.NoError(t, line.Locator(".copy-line-btn").Click(), "click copy")
	return harness.ReadClipboard(t, h.Page)
}
