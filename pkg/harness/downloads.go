package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WaitForDownload watches dir until a file matching the glob pattern appears
// and its size stops changing, then returns its path. this catches artifacts
// the product writes out-of-band (e.g. build exports triggered server-side)
// where Playwright's download event never fires.
func WaitForDownload(dir, pattern string, timeout time.Duration) (string, error) {
	// check first: the file may already be there
	if path, ok := findMatch(dir, pattern); ok {
		return path, waitSettled(path, timeout)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return "", fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // best-effort cleanup

	if err := watcher.Add(dir); err != nil {
		return "", fmt.Errorf("watch %s: %w", dir, err)
	}

	deadline := time.After(timeout)
	for {
		select {
		case <-deadline:
			return "", fmt.Errorf("no file matching %q in %s after %v", pattern, dir, timeout)
		case err := <-watcher.Errors:
			return "", fmt.Errorf("watch error: %w", err)
		case ev := <-watcher.Events:
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			ok, err := filepath.Match(pattern, filepath.Base(ev.Name))
			if err != nil {
				return "", fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
			// browsers write downloads via a temp name then rename, but a
			// direct write can still be in flight; wait for the size to settle
			if err := waitSettled(ev.Name, timeout); err != nil {
				return "", err
			}
			return ev.Name, nil
		}
	}
}

// findMatch returns the first existing file in dir matching pattern.
func findMatch(dir, pattern string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

// waitSettled polls until the file size is non-zero and stable across two reads.
func waitSettled(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastSize int64 = -1

	for time.Now().Before(deadline) {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				// renamed away mid-write; let the caller's watcher pick up the rename
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Size() > 0 && info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("file %s did not settle within %v", path, timeout)
}
