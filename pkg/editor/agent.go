package editor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/harness"
)

// agentRoutePattern matches the app's agent streaming endpoint regardless of
// host, so the intercept works against any deployment.
const agentRoutePattern = "**/agent/stream"

// RouteAgentTo rewrites agent requests to a local mock server, keeping the
// request body intact so the mock can match on the prompt.
func (h *Helper) RouteAgentTo(t *testing.T, mockURL string) {
	t.Helper()

	err := h.Page.Route(agentRoutePattern, func(route playwright.Route) {
		rerr := route.Continue(playwright.RouteContinueOptions{
			URL: playwright.String(strings.TrimRight(mockURL, "/") + "/agent/stream"),
		})
		require.NoError(t, rerr, "reroute agent request")
	})
	require.NoError(t, err, "install agent route")
}

// MockAgentInline fulfils agent requests from a canned SSE body without any
// server. chunks stream as text deltas; code, when non-empty, is proposed as
// an edit to path.
func (h *Helper) MockAgentInline(t *testing.T, chunks []string, path, code string) {
	t.Helper()

	body := buildSSEBody(chunks, path, code)
	err := h.Page.Route(agentRoutePattern, func(route playwright.Route) {
		rerr := route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/event-stream"),
			Body:        body,
		})
		require.NoError(t, rerr, "fulfill agent request")
	})
	require.NoError(t, err, "install agent route")
}

// buildSSEBody renders the canned agent stream: chunk events, an optional
// code event and the terminating done event.
func buildSSEBody(chunks []string, path, code string) string {
	var body strings.Builder
	for _, c := range chunks {
		fmt.Fprintf(&body, "event: chunk\ndata: %s\n\n", c)
	}
	if code != "" {
		fmt.Fprintf(&body, "event: code\ndata: {\"path\":%q,\"content\":%q}\n\n", path, code)
	}
	body.WriteString("event: done\ndata: {}\n\n")
	return body.String()
}

// MockAgentFailure fulfils agent requests with an SSE error event.
func (h *Helper) MockAgentFailure(t *testing.T, message string) {
	t.Helper()

	body := fmt.Sprintf("event: error\ndata: {\"message\":%q}\n\n", message)
	err := h.Page.Route(agentRoutePattern, func(route playwright.Route) {
		rerr := route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/event-stream"),
			Body:        body,
		})
		require.NoError(t, rerr, "fulfill agent request")
	})
	require.NoError(t, err, "install agent route")
}

// OpenAgentPanel toggles the AI assistant sidebar open.
func (h *Helper) OpenAgentPanel(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#agent-toggle").Click(), "open agent panel")
	harness.WaitVisible(t, h.Page, "#agent-panel.open")
}

// SendPrompt types a prompt into the agent input and submits it.
func (h *Helper) SendPrompt(t *testing.T, prompt string) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#agent-input").Fill(prompt), "fill prompt")
	require.NoError(t, h.Page.Locator("#agent-send").Click(), "send prompt")
}

// WaitAgentReply waits for a streamed reply containing substr and returns the
// full reply text. streaming can take a while, so the long timeout applies.
func (h *Helper) WaitAgentReply(t *testing.T, substr string) string {
	t.Helper()

	reply := h.Page.Locator(".agent-message.agent-reply").Last()
	require.Eventually(t, func() bool {
		text, err := reply.TextContent()
		return err == nil && strings.Contains(text, substr)
	}, harness.LongPollTimeout, harness.LongPollInterval, "agent reply never contained %q", substr)

	text, err := reply.TextContent()
	require.NoError(t, err, "reply text")
	return text
}

// WaitAgentError waits for the panel's error state and returns its message.
func (h *Helper) WaitAgentError(t *testing.T) string {
	t.Helper()

	harness.WaitVisible(t, h.Page, ".agent-message.agent-error")
	text, err := h.Page.Locator(".agent-message.agent-error").Last().TextContent()
	require.NoError(t, err, "agent error text")
	return text
}

// WaitProposal waits for a code proposal card to appear.
func (h *Helper) WaitProposal(t *testing.T) {
	t.Helper()
	harness.WaitVisible(t, h.Page, ".agent-proposal")
}

// AcceptProposal applies the pending code proposal and waits for the card to
// clear.
func (h *Helper) AcceptProposal(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#proposal-accept").Click(), "accept proposal")
	harness.WaitHidden(t, h.Page, ".agent-proposal")
}

// DismissProposal rejects the pending code proposal.
func (h *Helper) DismissProposal(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#proposal-dismiss").Click(), "dismiss proposal")
	harness.WaitHidden(t, h.Page, ".agent-proposal")
}
