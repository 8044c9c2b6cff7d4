//go:build e2e

package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// agent specs reroute the editor's agent traffic to the local mock started in
// TestMain, so assertions run against scripted responses instead of a live
// model.
func TestAgentConversation(t *testing.T) {
	dash := newDashboard(t)
	name := createApp(t, dash)
	ed := openEditor(t, dash, name)

	ed.RouteAgentTo(t, mock.URL())
	ed.OpenAgentPanel(t)

	t.Run("prompt gets streamed reply", func(t *testing.T) {
		before := mock.Requests()

		ed.SendPrompt(t, "add a greeting header")
		reply := ed.WaitAgentReply(t, "greeting")
		assert.NotEmpty(t, reply)
		assert.Greater(t, mock.Requests(), before, "request should reach the mock")
	})

	t.Run("unmatched prompt surfaces error", func(t *testing.T) {
		ed.SendPrompt(t, "zzz nothing matches this")
		msg := ed.WaitAgentError(t)
		assert.NotEmpty(t, msg)
	})
}

func TestAgentCodeProposal(t *testing.T) {
	dash := newDashboard(t)
	name := createApp(t, dash)
	ed := openEditor(t, dash, name)

	ed.RouteAgentTo(t, mock.URL())
	ed.OpenAgentPanel(t)

	t.Run("scripted code edit produces proposal", func(t *testing.T) {
		ed.SendPrompt(t, "write a click counter")
		ed.WaitProposal(t)
	})

	t.Run("accepting proposal applies code", func(t *testing.T) {
		ed.AcceptProposal(t)
		ed.OpenCodeView(t)
		assert.Contains(t, ed.CodeContent(t), "counter")
		ed.OpenDesignView(t)
	})

	t.Run("dismissed proposal leaves code untouched", func(t *testing.T) {
		ed.OpenCodeView(t)
		before := ed.CodeContent(t)
		ed.OpenDesignView(t)

		ed.SendPrompt(t, "write a click counter")
		ed.WaitProposal(t)
		ed.DismissProposal(t)

		ed.OpenCodeView(t)
		assert.Equal(t, before, ed.CodeContent(t))
	})
}

func TestAgentFailure(t *testing.T) {
	dash := newDashboard(t)
	name := createApp(t, dash)
	ed := openEditor(t, dash, name)

	// inline fulfilment, no mock server involved
	ed.MockAgentFailure(t, "model unavailable")
	ed.OpenAgentPanel(t)

	ed.SendPrompt(t, "anything")
	msg := ed.WaitAgentError(t)
	assert.Contains(t, msg, "model unavailable")

	t.Run("panel recovers for the next prompt", func(t *testing.T) {
		input := ed.Page.Locator("#agent-input")
		enabled, err := input.IsEnabled()
		require.NoError(t, err)
		assert.True(t, enabled, "input should be usable after an error")
	})
}

func TestAgentInlineMock(t *testing.T) {
	dash := newDashboard(t)
	name := createApp(t, dash)
	ed := openEditor(t, dash, name)

	ed.MockAgentInline(t, []string{"Here is ", "your snippet."}, "src/app.js", "export const answer = 42\n")
	ed.OpenAgentPanel(t)

	ed.SendPrompt(t, "give me a snippet")
	reply := ed.WaitAgentReply(t, "your snippet")
	assert.Contains(t, reply, "Here is")

	ed.WaitProposal(t)
	ed.AcceptProposal(t)

	ed.OpenCodeView(t)
	assert.Contains(t, ed.CodeContent(t), "answer = 42")
}
