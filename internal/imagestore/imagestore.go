// Package imagestore persists uploaded image files under a configured storage
// root. Files are grouped into per-species sub-directories and named with a
// collision-avoided random UUID; the database keeps only the path relative to
// the root.
package imagestore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/wildtag/wildtag-go/internal/conf"
	"github.com/wildtag/wildtag-go/internal/errors"
	"github.com/wildtag/wildtag-go/internal/logging"
)

const defaultChunkSize = 1024

// Store writes and resolves uploaded image files below a single root directory.
type Store struct {
	root      string
	chunkSize int
	logger    *slog.Logger
}

// New creates a Store rooted at the configured storage path. Relative paths
// are resolved against the working directory and the root is created when
// missing.
func New(settings *conf.Settings) (*Store, error) {
	root := settings.Storage.Path
	if root == "" {
		return nil, errors.Newf("storage path must not be empty").
			Category(errors.CategoryConfiguration).
			Component("imagestore").
			Build()
	}

	if !filepath.IsAbs(root) {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory to resolve storage path: %w", err)
		}
		root = filepath.Join(workDir, root)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %q: %w", root, err)
	}

	chunkSize := settings.Storage.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	logger := logging.ForService("imagestore")
	if logger == nil {
		logger = slog.Default().With("service", "imagestore")
	}

	return &Store{
		root:      root,
		chunkSize: chunkSize,
		logger:    logger,
	}, nil
}

// Root returns the absolute storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Save streams the uploaded content to disk below a sub-directory derived
// from the species name and returns the stored path relative to the root.
// The filename is a random UUID keeping the original extension, regenerated
// until it does not collide with an existing file.
func (s *Store) Save(speciesName, originalFilename string, content io.Reader) (string, error) {
	subDir := sanitizeDirName(speciesName)
	if subDir == "" {
		return "", errors.Newf("species name %q yields an empty storage directory", speciesName).
			Category(errors.CategoryValidation).
			Component("imagestore").
			Build()
	}

	dirPath := filepath.Join(s.root, subDir)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", errors.New(fmt.Errorf("failed to create species directory %q: %w", dirPath, err)).
			Category(errors.CategoryImageStore).
			Component("imagestore").
			Build()
	}

	ext := filepath.Ext(originalFilename)
	fileName := uuid.New().String() + ext
	for fileExists(filepath.Join(dirPath, fileName)) {
		fileName = uuid.New().String() + ext
	}

	fullPath := filepath.Join(dirPath, fileName)
	if err := s.writeChunked(fullPath, content); err != nil {
		return "", err
	}

	relPath := filepath.ToSlash(filepath.Join(subDir, fileName))
	s.logger.Info("stored uploaded image", "path", relPath, "species", speciesName)
	return relPath, nil
}

// writeChunked copies content to path in fixed-size chunks. There is no
// partial-write cleanup: a failed copy leaves whatever was written so far.
func (s *Store) writeChunked(path string, content io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.New(fmt.Errorf("failed to create file %q: %w", path, err)).
			Category(errors.CategoryImageStore).
			Component("imagestore").
			Build()
	}
	defer out.Close()

	buf := make([]byte, s.chunkSize)
	if _, err := io.CopyBuffer(out, content, buf); err != nil {
		return errors.New(fmt.Errorf("failed to write file %q: %w", path, err)).
			Category(errors.CategoryImageStore).
			Component("imagestore").
			Build()
	}
	return nil
}

// Resolve maps a stored relative path back to an absolute path under the
// root, rejecting traversal outside the storage root.
func (s *Store) Resolve(relPath string) (string, error) {
	fullPath := filepath.Join(s.root, filepath.FromSlash(relPath))

	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve storage root: %w", err)
	}
	absFull, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	if !strings.HasPrefix(absFull, absRoot+string(os.PathSeparator)) {
		return "", errors.Newf("path traversal attempt detected").
			Category(errors.CategoryValidation).
			Component("imagestore").
			Context("path", relPath).
			Build()
	}

	return absFull, nil
}

// fileExists reports whether a path exists on disk.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// sanitizeDirName reduces a species name to a safe directory name: spaces
// become underscores and anything outside [a-zA-Z0-9_-] is dropped.
func sanitizeDirName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
