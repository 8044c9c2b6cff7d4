// Package dashboard wraps the Studio dashboard surface into semantic test
// actions: login, app CRUD, version lifecycle and publishing. All methods wait
// for the UI to settle before returning so callers never race the frontend.
package dashboard

import (
	"fmt"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/harness"
)

// Helper drives one dashboard page.
type Helper struct {
	Page    playwright.Page
	BaseURL string
}

// New creates a dashboard helper for a page.
func New(page playwright.Page, baseURL string) *Helper {
	return &Helper{Page: page, BaseURL: baseURL}
}

// Open loads the dashboard and waits for the app grid to be ready.
func (h *Helper) Open(t *testing.T) {
	t.Helper()

	_, err := h.Page.Goto(h.BaseURL + "/dashboard")
	require.NoError(t, err, "navigate to dashboard")
	harness.WaitVisible(t, h.Page, "header .dashboard-title")
	harness.WaitVisible(t, h.Page, "#app-grid")
}

// Login signs in with the given credentials and waits for the dashboard.
// the deployment redirects authenticated users straight to /dashboard.
func (h *Helper) Login(t *testing.T, email, password string) {
	t.Helper()

	_, err := h.Page.Goto(h.BaseURL + "/login")
	require.NoError(t, err, "navigate to login")

	require.NoError(t, h.Page.Locator("#email").Fill(email), "fill email")
	require.NoError(t, h.Page.Locator("#password").Fill(password), "fill password")
	require.NoError(t, h.Page.Locator("#login-btn").Click(), "click login")

	harness.WaitVisible(t, h.Page, "header .dashboard-title")
}

// AppCard returns the locator for an app's card in the grid.
func (h *Helper) AppCard(name string) playwright.Locator {
	return h.Page.Locator(fmt.Sprintf(".app-card[data-app-name=%q]", name))
}

// CreateApp creates an app through the new-app modal. template may be empty
// for the blank template.
func (h *Helper) CreateApp(t *testing.T, name, template string) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#new-app-btn").Click(), "open new app modal")
	harness.WaitVisible(t, h.Page, "#new-app-overlay.visible")

	require.NoError(t, h.Page.Locator("#app-name-input").Fill(name), "fill app name")
	if template != "" {
		_, err := h.Page.Locator("#app-template-select").SelectOption(playwright.SelectOptionValues{
			Values: &[]string{template},
		})
		require.NoError(t, err, "select template %s", template)
	}

	require.NoError(t, h.Page.Locator("#new-app-create").Click(), "confirm create")
	harness.WaitHidden(t, h.Page, "#new-app-overlay.visible")

	// card appears once the backend reports the app ready
	err := h.AppCard(name).WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateVisible,
	})
	require.NoError(t, err, "app card for %s", name)
}

// CreateAppExpectingError submits the new-app form and returns the inline
// validation error without closing the modal.
func (h *Helper) CreateAppExpectingError(t *testing.T, name string) string {
	t.Helper()

	require.NoError(t, h.Page.Locator("#new-app-btn").Click(), "open new app modal")
	harness.WaitVisible(t, h.Page, "#new-app-overlay.visible")
	require.NoError(t, h.Page.Locator("#app-name-input").Fill(name), "fill app name")
	require.NoError(t, h.Page.Locator("#new-app-create").Click(), "confirm create")

	harness.WaitVisible(t, h.Page, "#new-app-overlay .form-error")
	text, err := h.Page.Locator("#new-app-overlay .form-error").TextContent()
	require.NoError(t, err, "read form error")
	return text
}

// CloseModal dismisses whichever modal is open via Escape.
func (h *Helper) CloseModal(t *testing.T) {
	t.Helper()
	require.NoError(t, h.Page.Keyboard().Press("Escape"), "press escape")
	harness.WaitHidden(t, h.Page, ".modal-overlay.visible")
}

// openAppMenu opens the per-card context menu and waits for it.
func (h *Helper) openAppMenu(t *testing.T, name string) {
	t.Helper()

	require.NoError(t, h.AppCard(name).Locator(".app-card-menu").Click(), "open app menu")
	harness.WaitVisible(t, h.Page, ".app-menu.visible")
}

// menuAction clicks an action in the open app menu.
func (h *Helper) menuAction(t *testing.T, action string) {
	t.Helper()
	sel := fmt.Sprintf(".app-menu.visible .menu-item[data-action=%q]", action)
	require.NoError(t, h.Page.Locator(sel).Click(), "menu action %s", action)
}

// RenameApp renames an app via the card menu and waits for the grid to update.
func (h *Helper) RenameApp(t *testing.T, oldName, newName string) {
	t.Helper()

	h.openAppMenu(t, oldName)
	h.menuAction(t, "rename")
	harness.WaitVisible(t, h.Page, "#rename-overlay.visible")

	input := h.Page.Locator("#rename-input")
	// the dialog pre-fills the current name; replace it wholesale
	require.NoError(t, input.Fill(newName), "fill new name")
	require.NoError(t, h.Page.Locator("#rename-confirm").Click(), "confirm rename")
	harness.WaitHidden(t, h.Page, "#rename-overlay.visible")

	harness.WaitForCount(t, h.AppCard(oldName), 0)
	harness.WaitForCount(t, h.AppCard(newName), 1)
}

// DuplicateApp duplicates an app; the copy is named "<name>-copy" by the product.
func (h *Helper) DuplicateApp(t *testing.T, name string) string {
	t.Helper()

	h.openAppMenu(t, name)
	h.menuAction(t, "duplicate")

	copyName := name + "-copy"
	harness.WaitForCount(t, h.AppCard(copyName), 1)
	return copyName
}

// DeleteApp deletes an app through the confirm dialog. the dialog requires
// typing the app name to arm the delete button.
func (h *Helper) DeleteApp(t *testing.T, name string) {
	t.Helper()

	h.openAppMenu(t, name)
	h.menuAction(t, "delete")
	harness.WaitVisible(t, h.Page, "#confirm-overlay.visible")

	require.NoError(t, h.Page.Locator("#confirm-name-input").Fill(name), "type app name to confirm")
	require.NoError(t, h.Page.Locator("#confirm-delete-btn").Click(), "confirm delete")
	harness.WaitHidden(t, h.Page, "#confirm-overlay.visible")

	harness.WaitForCount(t, h.AppCard(name), 0)
}

// SearchApps filters the grid and waits until the visible card count
// satisfies check. the grid filters client-side with a short debounce, so a
// raw count read can race the filter and report the pre-filter grid; callers
// state the count they expect instead.
func (h *Helper) SearchApps(t *testing.T, query string, check func(count int) bool) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#app-search").Fill(query), "fill search")

	require.Eventually(t, func() bool {
		c, err := h.Page.Locator(".app-card:visible").Count()
		return err == nil && check(c)
	}, harness.PollTimeout, harness.PollInterval, "card count for query %q never reached expectation", query)
}

// OpenEditor opens an app's editor, which launches in a separate tab, and
// returns the editor page with timeouts configured.
func (h *Helper) OpenEditor(t *testing.T, name string) playwright.Page {
	t.Helper()

	editorPage, err := h.Page.ExpectPopup(func() error {
		return h.AppCard(name).Locator(".app-card-open").Click()
	})
	require.NoError(t, err, "editor tab for %s", name)

	err = editorPage.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	})
	require.NoError(t, err, "editor tab load")

	t.Cleanup(func() { _ = editorPage.Close() })
	return editorPage
}
