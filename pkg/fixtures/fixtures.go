// Package fixtures loads template app projects from a git repository and
// seeds them into apps under test. Templates are cloned shallowly into memory;
// nothing touches the local filesystem.
package fixtures

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// File is one file of a template project.
type File struct {
	Path    string
	Content []byte
}

// Template is a checked-out template project.
type Template struct {
	fs billy.Filesystem
}

// Uploader pushes a file into an app's project tree. *client.Client satisfies it.
type Uploader interface {
	UploadFile(ctx context.Context, appID, path string, content []byte) error
}

// Load clones the template repository at the given ref into memory.
// ref may be a branch or tag name; empty means the remote HEAD.
func Load(ctx context.Context, repoURL, ref string) (*Template, error) {
	fs := memfs.New()

	opts := &git.CloneOptions{
		URL:          repoURL,
		Depth:        1,
		SingleBranch: true,
	}
	if ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(ref)
	}

	_, err := git.CloneContext(ctx, memory.NewStorage(), fs, opts)
	if err != nil && ref != "" {
		// branch miss: retry as a tag before giving up
		opts.ReferenceName = plumbing.NewTagReferenceName(ref)
		_, err = git.CloneContext(ctx, memory.NewStorage(), fs, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("clone template %s@%s: %w", repoURL, ref, err)
	}

	return &Template{fs: fs}, nil
}

// Files returns all template files in stable path order. any path with a
// dot-prefixed segment (.git, .github, dotfiles) is excluded; apps never
// contain them.
func (t *Template) Files() ([]File, error) {
	var files []File

	err := util.Walk(t.fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil // billy walk has no SkipDir for memfs root, rely on segment filter below
		}
		clean := strings.TrimPrefix(path, "/")
		for _, seg := range strings.Split(clean, "/") {
			if strings.HasPrefix(seg, ".") {
				return nil
			}
		}

		content, err := util.ReadFile(t.fs, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, File{Path: clean, Content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk template: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Seed uploads every template file into the given app. returns the number of
// files uploaded; stops at the first failure so a partial seed is visible.
func (t *Template) Seed(ctx context.Context, up Uploader, appID string) (int, error) {
	files, err := t.Files()
	if err != nil {
		return 0, err
	}

	for i, f := range files {
		if err := up.UploadFile(ctx, appID, f.Path, f.Content); err != nil {
			return i, fmt.Errorf("seed %s: %w", f.Path, err)
		}
	}
	return len(files), nil
}
