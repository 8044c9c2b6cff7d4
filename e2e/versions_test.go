//go:build e2e

package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionManagement(t *testing.T) {
	dash := newDashboard(t)
	name := createApp(t, dash)

	dash.OpenVersions(t, name)

	t.Run("new app has a single active version", func(t *testing.T) {
		labels := dash.VersionLabels(t)
		require.Len(t, labels, 1)
		assert.Equal(t, labels[0], dash.ActiveVersion(t))
	})

	t.Run("create version", func(t *testing.T) {
		dash.CreateVersion(t, "v2")
		assert.Contains(t, dash.VersionLabels(t), "v2")
	})

	t.Run("versions listed newest first", func(t *testing.T) {
		labels := dash.VersionLabels(t)
		require.GreaterOrEqual(t, len(labels), 2)
		assert.Equal(t, "v2", labels[0], "latest version leads the list")
	})

	t.Run("new version is not active until activated", func(t *testing.T) {
		assert.NotEqual(t, "v2", dash.ActiveVersion(t))
	})

	t.Run("activate version", func(t *testing.T) {
		dash.ActivateVersion(t, "v2")
		assert.Equal(t, "v2", dash.ActiveVersion(t))
	})

	t.Run("active version cannot be deleted", func(t *testing.T) {
		msg := dash.DeleteVersionExpectingGuard(t, "v2")
		assert.Contains(t, msg, "active")

		// the row must survive the rejected delete
		assert.Contains(t, dash.VersionLabels(t), "v2")
	})

	t.Run("inactive version can be deleted", func(t *testing.T) {
		dash.CreateVersion(t, "v3")
		dash.DeleteVersion(t, "v3")
		assert.NotContains(t, dash.VersionLabels(t), "v3")
	})

	dash.CloseVersions(t)

	t.Run("versions visible through the api", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		apps, err := api.ListApps(ctx)
		require.NoError(t, err)

		var appID string
		for _, a := range apps {
			if a.Name == name {
				appID = a.ID
				break
			}
		}
		require.NotEmpty(t, appID, "app %s not found via api", name)

		versions, err := api.ListVersions(ctx, appID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(versions), 2)
	})
}

func TestPublishLifecycle(t *testing.T) {
	dash := newDashboard(t)
	name := createApp(t, dash)

	t.Run("unpublished app has no badge", func(t *testing.T) {
		assert.Empty(t, dash.PublishBadge(t, name))
	})

	t.Run("publish to staging", func(t *testing.T) {
		dash.Publish(t, name, "staging")
		assert.Contains(t, dash.PublishBadge(t, name), "staging")
	})

	t.Run("published state survives reload", func(t *testing.T) {
		dash.Open(t)
		assert.Contains(t, dash.PublishBadge(t, name), "staging")
	})

	t.Run("republish to production replaces badge", func(t *testing.T) {
		dash.Publish(t, name, "production")
		badge := dash.PublishBadge(t, name)
		assert.Contains(t, badge, "production")
		assert.NotContains(t, badge, "staging")
	})

	t.Run("unpublish clears badge", func(t *testing.T) {
		dash.Unpublish(t, name)
		assert.Empty(t, dash.PublishBadge(t, name))
	})
}
