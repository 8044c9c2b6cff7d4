//go:build e2e

package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotHistory(t *testing.T) {
	dash := newDashboard(t)
	name := createApp(t, dash)
	ed := openEditor(t, dash, name)

	// two saves produce two snapshots
	ed.OpenCodeView(t)
	ed.SetCodeContent(t, "// first revision")
	ed.SaveCode(t)
	ed.SetCodeContent(t, "// second revision")
	ed.SaveCode(t)
	ed.OpenDesignView(t)

	t.Run("saves create snapshots", func(t *testing.T) {
		ed.OpenSnapshots(t)
		ed.WaitSnapshotCount(t, 2)
	})

	t.Run("restore brings back earlier content", func(t *testing.T) {
		// nth 1 is the snapshot taken at the first save
		ed.RestoreSnapshot(t, 1)
		assert.Contains(t, ed.Toast(t, "restored"), "restored")
		ed.OpenCodeView(t)
		assert.Contains(t, ed.CodeContent(t), "first revision")
		ed.OpenDesignView(t)
	})

	t.Run("restore itself is snapshotted", func(t *testing.T) {
		ed.OpenSnapshots(t)
		ed.WaitSnapshotCount(t, 3)
	})
}

func TestCrashRecovery(t *testing.T) {
	dash := newDashboard(t)
	app := seedApp(t)
	dash.Open(t) // reload so the seeded app shows up
	ed := openEditor(t, dash, app.Name)

	t.Run("draft triggers recovery banner", func(t *testing.T) {
		ed.PlantCrashDraft(t, app.ID, "// unsaved work")
	})

	t.Run("recover loads the draft", func(t *testing.T) {
		ed.RecoverDraft(t)
		ed.WaitReady(t)
		ed.OpenCodeView(t)
		assert.Contains(t, ed.CodeContent(t), "unsaved work")
		ed.OpenDesignView(t)
	})

	t.Run("discard drops the draft for good", func(t *testing.T) {
		ed.PlantCrashDraft(t, app.ID, "// more unsaved work")
		ed.DiscardDraft(t, app.ID)
		ed.WaitReady(t)

		// banner must not reappear on the next load
		_, err := ed.Page.Reload()
		require.NoError(t, err)
		ed.WaitReady(t)
		time.Sleep(noChangeWaitShort)
		visible, err := ed.Page.Locator("#recovery-banner.visible").IsVisible()
		require.NoError(t, err)
		assert.False(t, visible, "recovery banner must stay gone after discard")
	})
}

func TestSnapshotsViaAPI(t *testing.T) {
	dash := newDashboard(t)
	app := seedApp(t)
	dash.Open(t)
	ed := openEditor(t, dash, app.Name)

	ed.OpenCodeView(t)
	ed.SetCodeContent(t, "// api visibility check")
	ed.SaveCode(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	versions, err := api.ListVersions(ctx, app.ID)
	require.NoError(t, err)
	require.NotEmpty(t, versions)

	snapshots, err := api.ListSnapshots(ctx, versions[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, snapshots, "save should be visible as a snapshot via the api")
}
