package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/studio-e2e/pkg/harness"
)

// OpenFiles opens the file explorer sidebar.
func (h *Helper) OpenFiles(t *testing.T) {
	t.Helper()

	require.NoError(t, h.Page.Locator("#files-toggle").Click(), "open files panel")
	harness.WaitVisible(t, h.Page, "#files-panel.open")
}

// FileNode returns the explorer row for a path relative to the app root,
// e.g. "src/index.js".
func (h *Helper) FileNode(path string) playwright.Locator {
	return h.Page.Locator(fmt.Sprintf("#files-panel .file-node[data-path=%q]", path))
}

// ExpandFolder opens a collapsed folder. a no-op when already expanded.
func (h *Helper) ExpandFolder(t *testing.T, path string) {
	t.Helper()

	node := h.FileNode(path)
	class, err := node.GetAttribute("class")
	require.NoError(t, err, "read class of %s", path)
	if harness.HasClass(class, "expanded") {
		return
	}
	require.NoError(t, node.Locator(".file-node-toggle").Click(), "expand %s", path)
	harness.WaitForClass(t, node, "expanded")
}

// CollapseFolder closes an expanded folder.
func (h *Helper) CollapseFolder(t *testing.T, path string) {
	t.Helper()

	node := h.FileNode(path)
	require.NoError(t, node.Locator(".file-node-toggle").Click(), "collapse %s", path)
	harness.WaitForClassGone(t, node, "expanded")
}

// CreateFile adds a file under dir ("" for the root) via the context menu and
// waits for it to appear in the tree.
func (h *Helper) CreateFile(t *testing.T, dir, name string) {
	t.Helper()

	h.fileMenuAction(t, dir, "new-file")
	input := h.Page.Locator("#file-name-input")
	harness.WaitVisible(t, h.Page, "#file-name-input")
	harness.WaitFocused(t, input) // enter commits into the focused input
	require.NoError(t, input.Fill(name), "fill file name")
	require.NoError(t, h.Page.Keyboard().Press("Enter"), "commit file name")

	path := name
	if dir != "" {
		path = dir + "/" + name
	}
	harness.WaitVisible(t, h.Page, fmt.Sprintf("#files-panel .file-node[data-path=%q]", path))
}

// RenameFile renames a file via its context menu.
func (h *Helper) RenameFile(t *testing.T, path, newName string) {
	t.Helper()

	h.fileMenuAction(t, path, "rename")
	input := h.Page.Locator("#file-name-input")
	harness.WaitVisible(t, h.Page, "#file-name-input")
	harness.WaitFocused(t, input)
	// the dialog prefills the current name; wait for it so the fill
	// does not race the prefill
	harness.WaitInputValue(t, input, filepath.Base(path))
	require.NoError(t, input.Fill(newName), "fill new name")
	require.NoError(t, h.Page.Keyboard().Press("Enter"), "commit rename")

	newPath := filepath.ToSlash(filepath.Join(filepath.Dir(path), newName))
	if filepath.Dir(path) == "." {
		newPath = newName
	}
	harness.WaitVisible(t, h.Page, fmt.Sprintf("#files-panel .file-node[data-path=%q]", newPath))
	harness.WaitHidden(t, h.Page, fmt.Sprintf("#files-panel .file-node[data-path=%q]", path))
}

// DeleteFile removes a file via its context menu, confirming the prompt.
func (h *Helper) DeleteFile(t *testing.T, path string) {
	t.Helper()

	h.fileMenuAction(t, path, "delete")
	harness.WaitVisible(t, h.Page, "#confirm-overlay.visible")
	require.NoError(t, h.Page.Locator("#confirm-delete-btn").Click(), "confirm delete")
	harness.WaitHidden(t, h.Page, fmt.Sprintf("#files-panel .file-node[data-path=%q]", path))
}

// UploadFile uploads a local file into dir through the hidden file input and
// waits for it to show in the tree.
func (h *Helper) UploadFile(t *testing.T, dir, localPath string) {
	t.Helper()

	h.fileMenuAction(t, dir, "upload")
	require.NoError(t, h.Page.Locator("#files-panel input[type=file]").SetInputFiles(localPath), "set upload file")

	path := filepath.Base(localPath)
	if dir != "" {
		path = dir + "/" + path
	}
	harness.WaitVisible(t, h.Page, fmt.Sprintf("#files-panel .file-node[data-path=%q]", path))
}

// DownloadFile downloads a file via its context menu, saves it under dir and
// returns the saved path and content.
func (h *Helper) DownloadFile(t *testing.T, path, dir string) (string, []byte) {
	t.Helper()

	download, err := h.Page.ExpectDownload(func() error {
		h.fileMenuAction(t, path, "download")
		return nil
	})
	require.NoError(t, err, "expect download")

	saved := filepath.Join(dir, download.SuggestedFilename())
	require.NoError(t, download.SaveAs(saved), "save download")

	content, err := os.ReadFile(saved)
	require.NoError(t, err, "read downloaded file")
	require.NotEmpty(t, content, "downloaded file is empty")
	return saved, content
}

// ExportApp triggers the whole-app export and returns the saved archive path.
func (h *Helper) ExportApp(t *testing.T, dir string) string {
	t.Helper()

	download, err := h.Page.ExpectDownload(func() error {
		return h.Page.Locator("#export-app-btn").Click()
	})
	require.NoError(t, err, "expect export download")

	saved := filepath.Join(dir, download.SuggestedFilename())
	require.NoError(t, download.SaveAs(saved), "save export")

	info, err := os.Stat(saved)
	require.NoError(t, err, "stat export")
	require.NotZero(t, info.Size(), "export archive is empty")
	return saved
}

func (h *Helper) fileMenuAction(t *testing.T, path, action string) {
	t.Helper()

	target := h.Page.Locator("#files-panel .files-root")
	if path != "" {
		target = h.FileNode(path)
	}
	require.NoError(t, target.Click(playwright.LocatorClickOptions{
		Button: playwright.MouseButtonRight,
	}), "open context menu for %q", path)

	harness.WaitVisible(t, h.Page, ".file-menu.visible")
	item := h.Page.Locator(fmt.Sprintf(".file-menu.visible .menu-item[data-action=%q]", action))
	require.NoError(t, item.Click(), "menu action %s", action)
}
