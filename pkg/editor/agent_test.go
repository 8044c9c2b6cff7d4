package editor

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSSEBody(t *testing.T) {
	t.Run("chunks and code", func(t *testing.T) {
		body := buildSSEBody([]string{"hello", "world"}, "src/app.js", "console.log(1)")

		events := strings.Split(strings.TrimSuffix(body, "\n\n"), "\n\n")
		require.Len(t, events, 4)
		assert.Equal(t, "event: chunk\ndata: hello", events[0])
		assert.Equal(t, "event: chunk\ndata: world", events[1])
		assert.True(t, strings.HasPrefix(events[2], "event: code\ndata: "))
		assert.Equal(t, "event: done\ndata: {}", events[3])

		// code payload must be valid json
		var payload struct {
			Path    string `json:"path"`
			Content string `json:"content"`
		}
		data := strings.TrimPrefix(events[2], "event: code\ndata: ")
		require.NoError(t, json.Unmarshal([]byte(data), &payload))
		assert.Equal(t, "src/app.js", payload.Path)
		assert.Equal(t, "console.log(1)", payload.Content)
	})

	t.Run("no code event when empty", func(t *testing.T) {
		body := buildSSEBody([]string{"just text"}, "", "")
		assert.NotContains(t, body, "event: code")
		assert.Contains(t, body, "event: done")
	})

	t.Run("code with quotes and newlines survives quoting", func(t *testing.T) {
		body := buildSSEBody(nil, "a.js", "const s = \"x\";\nalert(s)")

		data := strings.TrimPrefix(strings.Split(body, "\n\n")[0], "event: code\ndata: ")
		var payload map[string]string
		require.NoError(t, json.Unmarshal([]byte(data), &payload))
		assert.Equal(t, "const s = \"x\";\nalert(s)", payload["content"])
	})
}
