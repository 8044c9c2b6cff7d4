package dashboard

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/harness"
)

// Publish runs the publish dialog for an app on the given channel
// ("staging" or "production") and waits for the card badge to flip.
func (h *Helper) Publish(t *testing.T, name, channel string) {
	t.Helper()

	h.openAppMenu(t, name)
	h.menuAction(t, "publish")
	harness.WaitVisible(t, h.Page, "#publish-overlay.visible")

	_, err := h.Page.Locator("#publish-channel-select").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{channel},
	})
	require.NoError(t, err, "select channel %s", channel)

	require.NoError(t, h.Page.Locator("#publish-confirm").Click(), "confirm publish")

	// publishing builds the app server-side; the dialog shows progress and
	// closes itself when the build lands
	harness.WaitHidden(t, h.Page, "#publish-overlay.visible", float64(harness.LongPollTimeout.Milliseconds()))
	harness.WaitForClass(t, h.AppCard(name), "published")
}

// Unpublish takes an app offline and waits for the badge to clear.
func (h *Helper) Unpublish(t *testing.T, name string) {
	t.Helper()

	h.openAppMenu(t, name)
	h.menuAction(t, "unpublish")
	harness.WaitVisible(t, h.Page, "#confirm-overlay.visible")
	require.NoError(t, h.Page.Locator("#confirm-delete-btn").Click(), "confirm unpublish")
	harness.WaitHidden(t, h.Page, "#confirm-overlay.visible")

	harness.WaitForClassGone(t, h.AppCard(name), "published")
}

// PublishBadge returns the text of an app's publish badge, carrying the
// channel name, or empty when the app is unpublished.
func (h *Helper) PublishBadge(t *testing.T, name string) string {
	t.Helper()

	badge := h.AppCard(name).Locator(".publish-badge")
	count, err := badge.Count()
	require.NoError(t, err, "count publish badge")
	if count == 0 {
		return ""
	}
	text, err := badge.TextContent()
	require.NoError(t, err, "publish badge text")
	return text
}
