//go:build e2e

package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/editor"
	"github.com/forgekit/studio-e2e/pkg/harness"
)

// consoleApp prepares an app whose code logs at several levels on preview,
// giving the console something to show.
func consoleApp(t *testing.T) *editor.Helper {
	t.Helper()

	dash := newDashboard(t)
	name := createApp(t, dash)
	ed := openEditor(t, dash, name)

	ed.OpenCodeView(t)
	ed.SetCodeContent(t, `console.log("app booted")
console.warn("low disk")
console.error("render failed")
`)
	ed.SaveCode(t)
	ed.OpenDesignView(t)
	return ed
}

func TestConsolePanel(t *testing.T) {
	ed := consoleApp(t)

	ed.OpenConsole(t)

	t.Run("shows log lines from the preview", func(t *testing.T) {
		line := ed.WaitConsoleLine(t, "app booted")
		assert.Contains(t, line, "app booted")
	})

	t.Run("levels carry their own style", func(t *testing.T) {
		ed.WaitConsoleLine(t, "render failed")
		harness.WaitForMinCount(t, ed.ConsoleLines("error"), 1)
		harness.WaitForMinCount(t, ed.ConsoleLines("warn"), 1)
	})

	t.Run("filter to errors only", func(t *testing.T) {
		ed.FilterConsole(t, "error")
		harness.WaitForCount(t, ed.ConsoleLines("log"), 0)
		harness.WaitForMinCount(t, ed.ConsoleLines("error"), 1)

		ed.FilterConsole(t, "")
		harness.WaitForMinCount(t, ed.ConsoleLines("log"), 1)
	})

	t.Run("copy line puts text on the clipboard", func(t *testing.T) {
		ed.WaitConsoleLine(t, "app booted")
		text := ed.CopyConsoleLine(t, 0)
		assert.NotEmpty(t, text)
	})

	t.Run("clear empties the console", func(t *testing.T) {
		ed.ClearConsole(t)
	})

	t.Run("toggle hides the drawer", func(t *testing.T) {
		ed.CloseConsole(t)
		visible, err := ed.Page.Locator("#console-panel.open").IsVisible()
		require.NoError(t, err)
		assert.False(t, visible)
	})
}

func TestConsoleSyntaxError(t *testing.T) {
	dash := newDashboard(t)
	name := createApp(t, dash)
	ed := openEditor(t, dash, name)

	// broken code saves fine; the preview chokes on it and the failure
	// lands in the console as an error line
	ed.OpenCodeView(t)
	ed.SetCodeContent(t, "function broken( {\n")
	ed.SaveCode(t)
	ed.OpenDesignView(t)

	ed.OpenConsole(t)
	line := ed.WaitConsoleLine(t, "SyntaxError")
	assert.Contains(t, line, "SyntaxError")
	harness.WaitForMinCount(t, ed.ConsoleLines("error"), 1)
}
