// Package tempstore writes uploaded binaries to isolated per-request scratch directories.
package tempstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// DefaultDirName is the process-wide subdirectory of os.TempDir used when no root is set.
const DefaultDirName = "lecture-pipeline"

// fallbackName is used when the suggested name is empty or unusable.
const fallbackName = "upload"

// ErrTooLarge is returned when content exceeds the store's size cap.
var ErrTooLarge = errors.New("upload exceeds size limit")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// File is a stored upload. Dir is private to this file.
type File struct {
	Path string
	Dir  string
	Size int64
}

// Remove deletes the file and its scratch directory.
func (f *File) Remove() error {
	if f == nil || f.Dir == "" {
		return nil
	}
	return os.RemoveAll(f.Dir)
}

// Store writes uploads under a root directory.
type Store struct {
	root     string
	maxBytes int64
}

// New creates a store rooted at root (os.TempDir()/lecture-pipeline when empty).
// maxBytes <= 0 disables the size cap.
func New(root string, maxBytes int64) *Store {
	if root == "" {
		root = filepath.Join(os.TempDir(), DefaultDirName)
	}
	return &Store{root: root, maxBytes: maxBytes}
}

// Root returns the directory under which scratch directories are created.
func (s *Store) Root() string {
	return s.root
}

// Store writes content to a fresh, uniquely named directory and returns its location.
// The write is synchronous; on failure nothing is left behind.
func (s *Store) Store(ctx context.Context, content io.Reader, suggestedName string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	path := filepath.Join(dir, SanitizeName(suggestedName))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to create scratch file: %w", err)
	}

	src := content
	if s.maxBytes > 0 {
		src = io.LimitReader(content, s.maxBytes+1)
	}

	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr == nil && s.maxBytes > 0 && n > s.maxBytes {
		copyErr = ErrTooLarge
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.RemoveAll(dir)
		if errors.Is(copyErr, ErrTooLarge) {
			return nil, copyErr
		}
		return nil, fmt.Errorf("failed to write scratch file: %w", copyErr)
	}

	return &File{Path: path, Dir: dir, Size: n}, nil
}

// SanitizeName reduces a client-supplied filename to a safe base name.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." {
		name = ""
	}

	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = strings.Trim(unsafeChars.ReplaceAllString(stem, "_"), "._")
	ext = unsafeChars.ReplaceAllString(ext, "")

	if stem == "" {
		stem = fallbackName
	}
	if len(stem) > 100 {
		stem = stem[:100]
	}
	if ext == "" || ext == "." {
		ext = ".bin"
	}
	return stem + ext
}
