// Package editor automates the Studio visual editor surface: component
// palette and canvas, drag-and-drop reordering, Monaco code editing, the AI
// agent panel, snapshots and recovery, the file explorer and the console.
//
// The editor is a heavily stateful single-page app; every action here waits
// for the UI to acknowledge the change before returning, and the drag helpers
// retry with a manual mouse path because HTML5 drag events are timing-flaky
// under automation.
package editor

import (
	"fmt"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/harness"
)

// Helper drives one editor tab.
type Helper struct {
	Page playwright.Page
}

// New creates an editor helper for a page (usually the popup returned by
// dashboard.Helper.OpenEditor).
func New(page playwright.Page) *Helper {
	return &Helper{Page: page}
}

// WaitReady waits for the canvas and palette to render. the editor shows a
// loading veil while it fetches the app model; both must be gone.
func (h *Helper) WaitReady(t *testing.T) {
	t.Helper()

	harness.WaitHidden(t, h.Page, "#editor-loading")
	harness.WaitVisible(t, h.Page, "#editor-canvas")
	harness.WaitVisible(t, h.Page, ".component-palette")
}

// PaletteItem returns the palette entry for a component kind ("button",
// "text", "image", "container", ...).
func (h *Helper) PaletteItem(kind string) playwright.Locator {
	return h.Page.Locator(fmt.Sprintf(".palette-item[data-component=%q]", kind))
}

// CanvasNodes returns all component nodes on the canvas in document order.
func (h *Helper) CanvasNodes() playwright.Locator {
	return h.Page.Locator("#editor-canvas .canvas-node")
}

// CanvasNodesOfKind returns canvas nodes of one component kind.
func (h *Helper) CanvasNodesOfKind(kind string) playwright.Locator {
	return h.Page.Locator(fmt.Sprintf("#editor-canvas .canvas-node[data-component=%q]", kind))
}

// AddComponent inserts a component by clicking its palette entry, which
// appends it to the current page, and waits for the node to appear.
func (h *Helper) AddComponent(t *testing.T, kind string) {
	t.Helper()

	before, err := h.CanvasNodesOfKind(kind).Count()
	require.NoError(t, err, "count %s nodes", kind)

	require.NoError(t, h.PaletteItem(kind).Click(), "click palette item %s", kind)
	harness.WaitForCount(t, h.CanvasNodesOfKind(kind), before+1)
}

// DragComponentToCanvas inserts a component by dragging its palette entry
// onto the canvas drop zone.
func (h *Helper) DragComponentToCanvas(t *testing.T, kind string) {
	t.Helper()

	before, err := h.CanvasNodesOfKind(kind).Count()
	require.NoError(t, err, "count %s nodes", kind)

	h.dragWithFallback(t, h.PaletteItem(kind), h.Page.Locator("#editor-canvas .drop-zone"), func() bool {
		count, err := h.CanvasNodesOfKind(kind).Count()
		return err == nil && count == before+1
	})
}

// SelectNode clicks the nth canvas node of a kind and waits for the selection
// outline. returns the node's id for property assertions.
func (h *Helper) SelectNode(t *testing.T, kind string, nth int) string {
	t.Helper()

	node := h.CanvasNodesOfKind(kind).Nth(nth)
	require.NoError(t, node.Click(), "select %s #%d", kind, nth)
	harness.WaitForClass(t, node, "selected")

	id, err := node.GetAttribute("data-node-id")
	require.NoError(t, err, "node id")
	return id
}

// SelectedNodeID returns the id of the currently selected node, empty if none.
func (h *Helper) SelectedNodeID(t *testing.T) string {
	t.Helper()

	selected := h.Page.Locator("#editor-canvas .canvas-node.selected")
	count, err := selected.Count()
	require.NoError(t, err, "count selected")
	if count == 0 {
		return ""
	}
	id, err := selected.First().GetAttribute("data-node-id")
	require.NoError(t, err, "selected node id")
	return id
}

// SetProperty updates a field in the property panel for the selected node.
// the panel commits on blur.
func (h *Helper) SetProperty(t *testing.T, prop, value string) {
	t.Helper()

	harness.WaitVisible(t, h.Page, "#property-panel")
	field := h.Page.Locator(fmt.Sprintf("#property-panel [data-prop=%q]", prop))
	require.NoError(t, field.Fill(value), "fill prop %s", prop)
	require.NoError(t, field.Blur(), "blur prop %s", prop)
}

// PropertyValue reads a field from the property panel.
func (h *Helper) PropertyValue(t *testing.T, prop string) string {
	t.Helper()

	field := h.Page.Locator(fmt.Sprintf("#property-panel [data-prop=%q]", prop))
	value, err := field.InputValue()
	require.NoError(t, err, "read prop %s", prop)
	return value
}

// Undo reverts the last editor action.
func (h *Helper) Undo(t *testing.T) {
	t.Helper()
	require.NoError(t, h.Page.Keyboard().Press("ControlOrMeta+z"), "undo")
}

// Redo reapplies the last undone action.
func (h *Helper) Redo(t *testing.T) {
	t.Helper()
	require.NoError(t, h.Page.Keyboard().Press("ControlOrMeta+Shift+z"), "redo")
}

// Toast waits for a toast with the given substring and returns its full text.
func (h *Helper) Toast(t *testing.T, substr string) string {
	t.Helper()

	harness.WaitForTextContains(t, h.Page.Locator(".toast").Last(), substr)
	text, err := h.Page.Locator(".toast").Last().TextContent()
	require.NoError(t, err, "toast text")
	return text
}
