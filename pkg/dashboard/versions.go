package dashboard

import (
	"fmt"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/harness"
)

// OpenVersions opens the versions panel for an app.
func (h *Helper) OpenVersions(t *testing.T, name string) {
	t.Helper()

	h.openAppMenu(t, name)
	h.menuAction(t, "versions")
	harness.WaitVisible(t, h.Page, "#versions-overlay.visible")
}

// CloseVersions dismisses the versions panel.
func (h *Helper) CloseVersions(t *testing.T) {
	t.Helper()
	require.NoError(t, h.Page.Locator("#versions-close").Click(), "close versions")
	harness.WaitHidden(t, h.Page, "#versions-overlay.visible")
}

// VersionRow returns the locator for a version row by label.
func (h *Helper) VersionRow(label string) playwright.Locator {
	return h.Page.Locator(fmt.Sprintf(".version-row[data-version-label=%q]", label))
}

// VersionLabels returns all version labels in display order (newest first).
func (h *Helper) VersionLabels(t *testing.T) []string {
	t.Helper()

	rows := h.Page.Locator(".version-row")
	count, err := rows.Count()
	require.NoError(t, err, "count version rows")

	labels := make([]string, 0, count)
	for i := 0; i < count; i++ {
		label, err := rows.Nth(i).GetAttribute("data-version-label")
		require.NoError(t, err, "version label at %d", i)
		labels = append(labels, label)
	}
	return labels
}

// CreateVersion snapshots the current state into a new version with the label.
func (h *Helper) CreateVersion(t *testing.T, label string) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#new-version-btn").Click(), "open version form")
	harness.WaitVisible(t, h.Page, "#version-label-input")
	require.NoError(t, h.Page.Locator("#version-label-input").Fill(label), "fill version label")
	require.NoError(t, h.Page.Locator("#create-version-confirm").Click(), "confirm version")

	harness.WaitForCount(t, h.VersionRow(label), 1)
}

// ActivateVersion makes a version active and waits for the badge to move.
func (h *Helper) ActivateVersion(t *testing.T, label string) {
	t.Helper()

	require.NoError(t, h.VersionRow(label).Locator(".activate-btn").Click(), "activate %s", label)
	harness.WaitForClass(t, h.VersionRow(label), "active")
}

// ActiveVersion returns the label of the currently active version.
func (h *Helper) ActiveVersion(t *testing.T) string {
	t.Helper()

	label, err := h.Page.Locator(".version-row.active").GetAttribute("data-version-label")
	require.NoError(t, err, "active version label")
	return label
}

// DeleteVersion deletes a non-active version.
func (h *Helper) DeleteVersion(t *testing.T, label string) {
	t.Helper()

	require.NoError(t, h.VersionRow(label).Locator(".delete-btn").Click(), "delete %s", label)
	harness.WaitVisible(t, h.Page, "#confirm-overlay.visible")
	require.NoError(t, h.Page.Locator("#confirm-delete-btn").Click(), "confirm delete")
	harness.WaitHidden(t, h.Page, "#confirm-overlay.visible")
	harness.WaitForCount(t, h.VersionRow(label), 0)
}

// DeleteVersionExpectingGuard attempts to delete the active version and
// returns the guard message; the row must survive.
func (h *Helper) DeleteVersionExpectingGuard(t *testing.T, label string) string {
	t.Helper()

	require.NoError(t, h.VersionRow(label).Locator(".delete-btn").Click(), "delete %s", label)
	harness.WaitVisible(t, h.Page, ".toast.toast-error")

	msg, err := h.Page.Locator(".toast.toast-error").TextContent()
	require.NoError(t, err, "guard toast text")

	harness.WaitForCount(t, h.VersionRow(label), 1)
	return msg
}
