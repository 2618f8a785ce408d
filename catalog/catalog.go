// Package catalog discovers log files under a root directory and resolves
// client-supplied file identifiers against it.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"logviewer/models"
)

// LogSuffix is the (case-sensitive) file name suffix of discoverable files.
const LogSuffix = ".log"

// ErrRejected is returned when a requested file resolves outside the root.
var ErrRejected = errors.New("path escapes log root")

// statFile is replaced in tests to simulate files vanishing mid-walk.
var statFile = os.Stat

// ListFiles walks root recursively and returns every *.log file, most
// recently modified first. Files that vanish or cannot be stat'ed during
// the walk are skipped. A missing root yields an empty list.
func ListFiles(root string) ([]models.LogFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.LogFile{}, nil
		}
		return nil, fmt.Errorf("stat log root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("log root %s is not a directory", root)
	}

	// WalkDir does not descend into a symlinked root on its own.
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve log root %s: %w", root, err)
	}

	files := []models.LogFile{}
	walkErr := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == walkRoot {
				return err
			}
			// Unreadable or vanished subtree; keep going.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		// Symlinked entries are not listed; Resolve decides whether
		// their targets may be read.
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), LogSuffix) {
			return nil
		}

		fi, err := statFile(path)
		if err != nil || !fi.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return nil
		}

		files = append(files, models.LogFile{
			RelativePath: filepath.ToSlash(rel),
			AbsolutePath: path,
			SizeBytes:    fi.Size(),
			ModifiedAt:   fi.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk log root %s: %w", root, walkErr)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModifiedAt.After(files[j].ModifiedAt)
	})

	return files, nil
}

// Resolve maps a requested file identifier to an absolute path inside root.
// Relative identifiers are joined to root; absolute ones are used as-is.
// Both sides are canonicalized (symlinks, "..") before the containment
// check, which compares path components rather than string prefixes.
func Resolve(root, requested string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		return "", fmt.Errorf("empty file identifier: %w", ErrRejected)
	}

	canonicalRoot, err := canonicalize(root)
	if err != nil {
		return "", fmt.Errorf("resolve log root %s: %w", root, err)
	}

	target := requested
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}

	canonicalTarget, err := canonicalize(target)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", requested, err)
	}

	if !within(canonicalRoot, canonicalTarget) {
		return "", fmt.Errorf("%q: %w", requested, ErrRejected)
	}

	return canonicalTarget, nil
}

// within reports whether path is a strict descendant of root.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}

// canonicalize returns the absolute, symlink-free form of path. Components
// that cannot be evaluated (usually because they no longer exist) are
// re-appended to the canonical form of their deepest resolvable ancestor,
// so a file that vanished still resolves.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	var missing []string
	current := abs
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return abs, nil
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}
