package editor

import (
	"fmt"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/harness"
)

// OpenSnapshots opens the snapshot history sidebar.
func (h *Helper) OpenSnapshots(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#snapshots-toggle").Click(), "open snapshots")
	harness.WaitVisible(t, h.Page, "#snapshots-panel.open")
}

// SnapshotItems returns the snapshot rows, newest first.
func (h *Helper) SnapshotItems() playwright.Locator {
	return h.Page.Locator("#snapshots-panel .snapshot-item")
}

// WaitSnapshotCount waits until the panel lists at least n snapshots. the app
// creates snapshots automatically on save, so this polls with the long
// timeout.
func (h *Helper) WaitSnapshotCount(t *testing.T, n int) {
	t.Helper()
	harness.WaitForMinCount(t, h.SnapshotItems(), n)
}

// RestoreSnapshot restores the nth snapshot (0 = newest). restore replaces
// the working copy, so the app asks for confirmation first.
func (h *Helper) RestoreSnapshot(t *testing.T, nth int) {
	t.Helper()

	item := h.SnapshotItems().Nth(nth)
	require.NoError(t, item.Locator(".snapshot-restore").Click(), "click restore")

	harness.WaitVisible(t, h.Page, "#confirm-overlay.visible")
	require.NoError(t, h.Page.Locator("#confirm-restore-btn").Click(), "confirm restore")
	harness.WaitHidden(t, h.Page, "#confirm-overlay.visible")

	// the editor reloads the model after a restore
	h.WaitReady(t)
}

// PlantCrashDraft writes an unsaved-work draft into localStorage the way the
// editor's autosave does, then reloads. the recovery banner should offer the
// draft on the next load.
func (h *Helper) PlantCrashDraft(t *testing.T, appID, content string) {
	t.Helper()

	_, err := h.Page.Evaluate(`([appID, content]) => {
		localStorage.setItem("studio-draft-" + appID, JSON.stringify({
			content: content,
			savedAt: Date.now(),
		}));
	}`, []interface{}{appID, content})
	require.NoError(t, err, "plant draft")

	_, err = h.Page.Reload()
	require.NoError(t, err, "reload editor")
	harness.WaitVisible(t, h.Page, "#recovery-banner.visible")
}

// RecoverDraft accepts the recovery banner, loading the draft into the
// editor.
func (h *Helper) RecoverDraft(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#recovery-restore").Click(), "recover draft")
	harness.WaitHidden(t, h.Page, "#recovery-banner.visible")
}

// DiscardDraft rejects the recovery banner and verifies the stored draft is
// gone, so the banner cannot reappear.
func (h *Helper) DiscardDraft(t *testing.T, appID string) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#recovery-discard").Click(), "discard draft")
	harness.WaitHidden(t, h.Page, "#recovery-banner.visible")

	value, err := h.Page.Evaluate(fmt.Sprintf(`() => localStorage.getItem("studio-draft-%s")`, appID))
	require.NoError(t, err, "read draft key")
	require.Nil(t, value, "draft key still present after discard")
}
