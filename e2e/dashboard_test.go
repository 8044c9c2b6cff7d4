//go:build e2e

package e2e

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/harness"
)

func TestDashboardLoads(t *testing.T) {
	dash := newDashboard(t)

	t.Run("has app grid", func(t *testing.T) {
		harness.WaitVisible(t, dash.Page, "#app-grid")
	})

	t.Run("has new app button", func(t *testing.T) {
		btn := dash.Page.Locator("#new-app-btn")
		visible, err := btn.IsVisible()
		require.NoError(t, err)
		assert.True(t, visible)
	})

	t.Run("has search box", func(t *testing.T) {
		box := dash.Page.Locator("#app-search")
		visible, err := box.IsVisible()
		require.NoError(t, err)
		assert.True(t, visible)
	})
}

func TestAppLifecycle(t *testing.T) {
	dash := newDashboard(t)
	name := createApp(t, dash)

	t.Run("created app appears in grid", func(t *testing.T) {
		harness.WaitVisible(t, dash.Page, ".app-card[data-app-name=\""+name+"\"]")
	})

	t.Run("rename app", func(t *testing.T) {
		renamed := name + "-r"
		dash.RenameApp(t, name, renamed)
		t.Cleanup(func() { deleteAppByName(t, renamed) })

		// the old card must be gone, not just a second card added
		count, err := dash.AppCard(name).Count()
		require.NoError(t, err)
		assert.Zero(t, count, "old app name should disappear after rename")
		name = renamed
	})

	t.Run("duplicate app", func(t *testing.T) {
		copyName := dash.DuplicateApp(t, name)
		t.Cleanup(func() { deleteAppByName(t, copyName) })

		assert.Equal(t, name+"-copy", copyName)
		harness.WaitVisible(t, dash.Page, ".app-card[data-app-name=\""+copyName+"\"]")
	})

	t.Run("delete app", func(t *testing.T) {
		dash.DeleteApp(t, name)

		// deletion is final, the card must not come back after a reload
		dash.Open(t)
		time.Sleep(noChangeWaitShort)
		count, err := dash.AppCard(name).Count()
		require.NoError(t, err)
		assert.Zero(t, count, "deleted app should stay gone after reload")
	})
}

func TestAppCreationValidation(t *testing.T) {
	dash := newDashboard(t)
	name := createApp(t, dash)

	t.Run("duplicate name rejected", func(t *testing.T) {
		msg := dash.CreateAppExpectingError(t, name)
		assert.Contains(t, msg, "exists")
		dash.CloseModal(t)

		// still exactly one card with that name
		count, err := dash.AppCard(name).Count()
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		msg := dash.CreateAppExpectingError(t, "")
		assert.NotEmpty(t, msg)
		dash.CloseModal(t)
	})

	t.Run("overlong name rejected", func(t *testing.T) {
		long := harness.UniqueName(cfg.CleanupPrefix)
		for len(long) < 120 {
			long += "-xxxxxxxxxx"
		}
		msg := dash.CreateAppExpectingError(t, long)
		assert.NotEmpty(t, msg)
		dash.CloseModal(t)
	})
}

func TestAppSearch(t *testing.T) {
	dash := newDashboard(t)
	first := createApp(t, dash)
	second := createApp(t, dash)

	t.Run("search narrows to one app", func(t *testing.T) {
		dash.SearchApps(t, first, func(n int) bool { return n == 1 })
		harness.WaitVisible(t, dash.Page, ".app-card[data-app-name=\""+first+"\"]")
	})

	t.Run("clearing search restores grid", func(t *testing.T) {
		dash.SearchApps(t, "", func(n int) bool { return n >= 2 })
		harness.WaitVisible(t, dash.Page, ".app-card[data-app-name=\""+second+"\"]")
	})

	t.Run("no matches shows empty state", func(t *testing.T) {
		dash.SearchApps(t, "no-such-app-zzz", func(n int) bool { return n == 0 })
		harness.WaitVisible(t, dash.Page, "#app-grid-empty")

		// reset for cleanup visibility
		dash.SearchApps(t, "", func(n int) bool { return n >= 1 })
	})
}
