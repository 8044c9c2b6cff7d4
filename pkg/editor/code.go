package editor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/harness"
)

// OpenCodeView switches the editor to the code tab and waits for monaco to
// attach. the model loads async after the container mounts.
func (h *Helper) OpenCodeView(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#view-toggle-code").Click(), "open code view")
	harness.WaitVisible(t, h.Page, ".monaco-editor")

	require.Eventually(t, func() bool {
		ready, err := h.Page.Evaluate(`() => !!(window.monaco && monaco.editor.getModels().length)`)
		ok, _ := ready.(bool)
		return err == nil && ok
	}, harness.LongPollTimeout, harness.PollInterval, "monaco model never loaded")
}

// OpenDesignView switches back to the visual canvas.
func (h *Helper) OpenDesignView(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#view-toggle-design").Click(), "open design view")
	harness.WaitVisible(t, h.Page, "#editor-canvas")
}

// CodeContent reads the full text of the active monaco model.
func (h *Helper) CodeContent(t *testing.T) string {
	t.Helper()

	value, err := h.Page.Evaluate(`() => monaco.editor.getModels()[0].getValue()`)
	require.NoError(t, err, "read monaco content")
	text, ok := value.(string)
	require.True(t, ok, "monaco content is not a string: %T", value)
	return text
}

// SetCodeContent replaces the monaco buffer. it sets the model value directly
// and falls back to keyboard input when the monaco global is unreachable
// (e.g. the app serves the editor inside a cross-origin frame).
func (h *Helper) SetCodeContent(t *testing.T, content string) {
	t.Helper()

	done, err := h.Page.Evaluate(`(content) => {
		if (!window.monaco) return false;
		const models = monaco.editor.getModels();
		if (!models.length) return false;
		models[0].setValue(content);
		return true;
	}`, content)
	if ok, _ := done.(bool); err == nil && ok {
		return
	}

	// keyboard path: select-all then type
	area := h.Page.Locator(".monaco-editor textarea").First()
	require.NoError(t, area.Click(), "focus editor")
	require.NoError(t, h.Page.Keyboard().Press("ControlOrMeta+a"), "select all")
	require.NoError(t, h.Page.Keyboard().Type(content), "type content")
}

// TypeInCode appends text at the current cursor via the keyboard, which marks
// the buffer dirty the same way a user edit does.
func (h *Helper) TypeInCode(t *testing.T, text string) {
	t.Helper()

	area := h.Page.Locator(".monaco-editor textarea").First()
	require.NoError(t, area.Click(), "focus editor")
	require.NoError(t, h.Page.Keyboard().Press("ControlOrMeta+End"), "jump to end")
	require.NoError(t, h.Page.Keyboard().Type(text), "type text")
}

// WaitDirty waits for the unsaved-changes indicator.
func (h *Helper) WaitDirty(t *testing.T) {
	t.Helper()
	harness.WaitVisible(t, h.Page, "#dirty-indicator")
}

// SaveCode saves with the keyboard shortcut and waits for the dirty indicator
// to clear.
func (h *Helper) SaveCode(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Keyboard().Press("ControlOrMeta+s"), "save")
	harness.WaitHidden(t, h.Page, "#dirty-indicator")
	harness.WaitForTextContains(t, h.Page.Locator("#save-status"), "Saved")
}

// ErrorMarkers returns the squiggle marker texts monaco reports for the
// current model, empty when the code is clean.
func (h *Helper) ErrorMarkers(t *testing.T) []string {
	t.Helper()

	value, err := h.Page.Evaluate(`() => monaco.editor
		.getModelMarkers({})
		.filter((m) => m.severity === monaco.MarkerSeverity.Error)
		.map((m) => m.message)`)
	require.NoError(t, err, "read markers")

	raw, ok := value.([]interface{})
	require.True(t, ok, "markers is not a list: %T", value)

	messages := make([]string, 0, len(raw))
	for _, m := range raw {
		if s, ok := m.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}

// WaitErrorMarker waits until monaco reports at least one error marker.
func (h *Helper) WaitErrorMarker(t *testing.T) {
	t.Helper()

	require.Eventually(t, func() bool {
		value, err := h.Page.Evaluate(`() => monaco.editor
			.getModelMarkers({})
			.some((m) => m.severity === monaco.MarkerSeverity.Error)`)
		ok, _ := value.(bool)
		return err == nil && ok
	}, harness.LongPollTimeout, harness.PollInterval, "no error marker appeared")
}

// WaitNoErrorMarkers waits until monaco reports no error markers.
func (h *Helper) WaitNoErrorMarkers(t *testing.T) {
	t.Helper()

	require.Eventually(t, func() bool {
		value, err := h.Page.Evaluate(`() => monaco.editor
			.getModelMarkers({})
			.every((m) => m.severity !== monaco.MarkerSeverity.Error)`)
		ok, _ := value.(bool)
		return err == nil && ok
	}, harness.LongPollTimeout, harness.PollInterval, "error markers never cleared")
}
