package harness

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

// polling intervals for condition-based waits (replaces time.Sleep).
const (
	PollTimeout      = 5 * time.Second
	PollInterval     = 100 * time.Millisecond
	LongPollTimeout  = 15 * time.Second
	LongPollInterval = 500 * time.Millisecond
)

// WaitVisible waits for a selector to become visible.
func WaitVisible(t *testing.T, page playwright.Page, selector string, timeout ...float64) {
	t.Helper()
	waitState(t, page, selector, playwright.WaitForSelectorStateVisible, timeout...)
}

// WaitHidden waits for a selector to become hidden.
func WaitHidden(t *testing.T, page playwright.Page, selector string, timeout ...float64) {
	t.Helper()
	waitState(t, page, selector, playwright.WaitForSelectorStateHidden, timeout...)
}

func waitState(t *testing.T, page playwright.Page, selector string, state *playwright.WaitForSelectorState, timeout ...float64) {
	t.Helper()

	timeoutMs := float64(LongPollTimeout / time.Millisecond)
	if len(timeout) > 0 {
		timeoutMs = timeout[0]
	}

	err := page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   state,
		Timeout: playwright.Float(timeoutMs),
	})
	require.NoError(t, err, "wait for %s to become %v", selector, *state)
}

// HasClass checks if classAttr contains the exact CSS class token.
// uses strings.Fields for exact token matching to avoid false positives
// (e.g. "panel-collapsed" matching "collapsed").
func HasClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}

// WaitForClass polls until the locator's class attribute contains the exact token.
func WaitForClass(t *testing.T, loc playwright.Locator, class string) {
	t.Helper()
	require.Eventually(t, func() bool {
		c, err := loc.GetAttribute("class")
		return err == nil && HasClass(c, class)
	}, PollTimeout, PollInterval, "element should have class %q", class)
}

// WaitForClassGone polls until the locator's class attribute no longer contains the exact token.
func WaitForClassGone(t *testing.T, loc playwright.Locator, class string) {
	t.Helper()
	require.Eventually(t, func() bool {
		c, err := loc.GetAttribute("class")
		return err == nil && !HasClass(c, class)
	}, PollTimeout, PollInterval, "element should not have class %q", class)
}

// WaitForCount polls until the locator count equals expected.
func WaitForCount(t *testing.T, loc playwright.Locator, expected int) {
	t.Helper()
	require.Eventually(t, func() bool {
		count, err := loc.Count()
		return err == nil && count == expected
	}, LongPollTimeout, LongPollInterval, "expected %d elements", expected)
}

// WaitForMinCount polls until the locator count is at least min.
func WaitForMinCount(t *testing.T, loc playwright.Locator, min int) {
	t.Helper()
	require.Eventually(t, func() bool {
		count, err := loc.Count()
		return err == nil && count >= min
	}, LongPollTimeout, LongPollInterval, "expected at least %d elements", min)
}

// WaitForText polls until the locator's text content equals expected.
func WaitForText(t *testing.T, loc playwright.Locator, expected string) {
	t.Helper()
	require.Eventually(t, func() bool {
		text, err := loc.TextContent()
		return err == nil && strings.TrimSpace(text) == expected
	}, LongPollTimeout, PollInterval, "element should have text %q", expected)
}

// WaitForTextContains polls until the locator's text content contains substr.
func WaitForTextContains(t *testing.T, loc playwright.Locator, substr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		text, err := loc.TextContent()
		return err == nil && strings.Contains(text, substr)
	}, LongPollTimeout, PollInterval, "element text should contain %q", substr)
}

// WaitInputValue polls until the locator's input value matches expected.
func WaitInputValue(t *testing.T, loc playwright.Locator, expected string) {
	t.Helper()
	require.Eventually(t, func() bool {
		v, err := loc.InputValue()
		return err == nil && v == expected
	}, PollTimeout, PollInterval, "input should have value %q", expected)
}

// WaitFocused polls until the locator's element is the active (focused) element.
func WaitFocused(t *testing.T, loc playwright.Locator) {
	t.Helper()
	var lastErr error
	require.Eventually(t, func() bool {
		focused, err := loc.Evaluate("el => document.activeElement === el", nil)
		if err != nil {
			lastErr = err
			return false
		}
		b, ok := focused.(bool)
		if !ok {
			lastErr = fmt.Errorf("expected bool, got %T", focused)
			return false
		}
		return b
	}, PollTimeout, PollInterval, "element should be focused, last error: %v", lastErr)
}

// ReadClipboard returns the page's clipboard text. the browser context must
// have been granted clipboard-read permission.
func ReadClipboard(t *testing.T, page playwright.Page) string {
	t.Helper()

	result, err := page.Evaluate("() => navigator.clipboard.readText()")
	require.NoError(t, err, "read clipboard")
	text, ok := result.(string)
	require.True(t, ok, "clipboard result is not a string: %T", result)
	return text
}
