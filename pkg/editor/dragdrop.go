package editor

import (
	"fmt"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/harness"
)

// dragAttempts caps how many times a drag is retried before failing. native
// DragTo is tried first, then a manual mouse path which fires the dragover
// events some drop targets need.
const dragAttempts = 3

// TreeNode returns the layers-panel entry for a node id.
func (h *Helper) TreeNode(id string) playwright.Locator {
	return h.Page.Locator(fmt.Sprintf("#layers-panel .tree-node[data-node-id=%q]", id))
}

// TreeOrder returns the node ids in the layers panel, top to bottom.
func (h *Helper) TreeOrder(t *testing.T) []string {
	t.Helper()

	ids, err := h.treeOrder()
	require.NoError(t, err, "read tree order")
	return ids
}

func (h *Helper) treeOrder() ([]string, error) {
	nodes := h.Page.Locator("#layers-panel .tree-node")
	count, err := nodes.Count()
	if err != nil {
		return nil, fmt.Errorf("count tree nodes: %w", err)
	}

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id, err := nodes.Nth(i).GetAttribute("data-node-id")
		if err != nil {
			return nil, fmt.Errorf("tree node id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// WaitTreeOrder polls until the layers panel satisfies check.
func (h *Helper) WaitTreeOrder(t *testing.T, check func(ids []string) bool, msg string) {
	t.Helper()

	require.Eventually(t, func() bool {
		ids, err := h.treeOrder()
		return err == nil && check(ids)
	}, harness.LongPollTimeout, harness.PollInterval, msg)
}

// MoveBefore drags a tree node so it sits directly above another node at the
// same depth.
func (h *Helper) MoveBefore(t *testing.T, id, beforeID string) {
	t.Helper()

	h.dragWithFallback(t, h.TreeNode(id), h.TreeNode(beforeID), func() bool {
		order, err := h.treeOrder()
		if err != nil {
			return false
		}
		for i, got := range order {
			if got == id {
				return i+1 < len(order) && order[i+1] == beforeID
			}
		}
		return false
	})
}

// NestInto drags a tree node onto a container node so it becomes a child. the
// panel marks children with an incremented data-depth.
func (h *Helper) NestInto(t *testing.T, id, parentID string) {
	t.Helper()

	parentDepth, err := h.nodeDepth(parentID)
	require.NoError(t, err, "depth of parent %s", parentID)

	h.dragWithFallback(t, h.TreeNode(id), h.TreeNode(parentID), func() bool {
		depth, derr := h.nodeDepth(id)
		return derr == nil && depth == parentDepth+1
	})
}

func (h *Helper) nodeDepth(id string) (int, error) {
	depth, err := h.TreeNode(id).GetAttribute("data-depth")
	if err != nil {
		return 0, fmt.Errorf("node depth %s: %w", id, err)
	}
	var n int
	if _, err := fmt.Sscanf(depth, "%d", &n); err != nil {
		return 0, fmt.Errorf("parse depth %q: %w", depth, err)
	}
	return n, nil
}

// dragWithFallback performs src→target drag and verifies the result with
// check. attempt 1 uses playwright's DragTo, later attempts walk the mouse
// through intermediate positions so dragover fires on the target.
func (h *Helper) dragWithFallback(t *testing.T, src, target playwright.Locator, check func() bool) {
	t.Helper()

	for attempt := 1; attempt <= dragAttempts; attempt++ {
		var err error
		if attempt == 1 {
			err = src.DragTo(target)
		} else {
			err = h.manualDrag(src, target)
		}
		if err == nil && eventually(check, harness.PollTimeout, harness.PollInterval) {
			return
		}
		time.Sleep(harness.PollInterval)
	}
	require.Fail(t, "drag did not take effect", "after %d attempts", dragAttempts)
}

func (h *Helper) manualDrag(src, target playwright.Locator) error {
	from, err := src.BoundingBox()
	if err != nil {
		return fmt.Errorf("source bounding box: %w", err)
	}
	to, err := target.BoundingBox()
	if err != nil {
		return fmt.Errorf("target bounding box: %w", err)
	}

	mouse := h.Page.Mouse()
	fromX, fromY := from.X+from.Width/2, from.Y+from.Height/2
	toX, toY := to.X+to.Width/2, to.Y+to.Height/2

	if err := mouse.Move(fromX, fromY); err != nil {
		return fmt.Errorf("move to source: %w", err)
	}
	if err := mouse.Down(); err != nil {
		return fmt.Errorf("press: %w", err)
	}
	// two intermediate moves so the target sees dragenter before drop
	if err := mouse.Move(fromX+(toX-fromX)/2, fromY+(toY-fromY)/2, playwright.MouseMoveOptions{Steps: playwright.Int(5)}); err != nil {
		return fmt.Errorf("move midway: %w", err)
	}
	if err := mouse.Move(toX, toY, playwright.MouseMoveOptions{Steps: playwright.Int(5)}); err != nil {
		return fmt.Errorf("move to target: %w", err)
	}
	if err := mouse.Up(); err != nil {
		return fmt.Errorf("release: %w", err)
	}
	return nil
}

func eventually(check func() bool, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return true
		}
		time.Sleep(interval)
	}
	return check()
}
