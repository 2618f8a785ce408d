package collector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"logviewer/formats"
)

// maxOpenFiles bounds the cached append handles; the cache is flushed
// when it fills up.
const maxOpenFiles = 256

// Store appends received messages to files under a log root. Every line
// goes to the combined file; structured messages are also written to
// <hostname>/<app-name>.log.
type Store struct {
	root     string
	combined string

	mu    sync.Mutex
	files map[string]*os.File
}

// NewStore creates the root if needed. combined is relative to root.
func NewStore(root, combined string) (*Store, error) {
	if !filepath.IsLocal(combined) {
		return nil, fmt.Errorf("combined file %q must be a relative path inside the root", combined)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create log root: %w", err)
	}
	return &Store{
		root:     root,
		combined: combined,
		files:    make(map[string]*os.File),
	}, nil
}

// Append writes msg in traditional file format.
func (s *Store) Append(msg formats.WireMessage) error {
	line := msg.Line()
	if line == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	errs = append(errs, s.write(s.combined, line))
	if msg.Structured() {
		rel := filepath.Join(pathComponent(msg.Hostname), pathComponent(msg.AppName)+".log")
		errs = append(errs, s.write(rel, line))
	}
	return errors.Join(errs...)
}

// Close closes every cached file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeAll()
}

func (s *Store) write(rel, line string) error {
	f, err := s.open(rel)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append to %s: %w", rel, err)
	}
	return nil
}

func (s *Store) open(rel string) (*os.File, error) {
	if f, ok := s.files[rel]; ok {
		return f, nil
	}
	if len(s.files) >= maxOpenFiles {
		if err := s.closeAll(); err != nil {
			return nil, err
		}
	}

	path := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(rel), err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", rel, err)
	}
	s.files[rel] = f
	return f, nil
}

func (s *Store) closeAll() error {
	var errs []error
	for rel, f := range s.files {
		errs = append(errs, f.Close())
		delete(s.files, rel)
	}
	return errors.Join(errs...)
}

// pathComponent makes s usable as a single file name.
func pathComponent(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
	if s == "" || strings.Trim(s, ".") == "" {
		return "unknown"
	}
	return s
}
