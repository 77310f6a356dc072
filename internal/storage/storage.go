// Package storage reads input documents from local paths or remote URLs and
// writes exported documents, guarding local destinations with a file lock.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/sammcj/mcp-pdfedit/internal/document"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

var (
	// ErrTooLarge is returned for inputs above the configured size limit.
	ErrTooLarge = errors.New("file exceeds the maximum allowed size")
	// ErrNotPDF is returned when the input lacks a PDF header.
	ErrNotPDF = errors.New("file is not a PDF document")
)

const (
	pdfHeader      = "%PDF-"
	lockFileName   = ".pdfedit.lock"
	lockRetryDelay = 50 * time.Millisecond
)

// Store moves document bytes in and out of the process.
type Store struct {
	fs      afs.Service
	maxSize int64
	policy  *Policy
	logger  *logrus.Logger
}

// New creates a Store. maxSize of zero disables the size check.
func New(maxSize int64, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{fs: afs.New(), maxSize: maxSize, logger: logger}
}

// WithPolicy sets the access policy applied to reads and writes.
func (s *Store) WithPolicy(p *Policy) *Store {
	s.policy = p
	return s
}

// MaxSize returns the configured input limit in bytes.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Validate checks data against the size limit and the PDF header.
func (s *Store) Validate(data []byte) error {
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return fmt.Errorf("%w: %s (limit %s)", ErrTooLarge,
			document.FormatFileSize(int64(len(data))), document.FormatFileSize(s.maxSize))
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte(pdfHeader)) {
		return ErrNotPDF
	}
	return nil
}

// Read loads a document from a local path or any URL afs understands.
func (s *Store) Read(ctx context.Context, location string) ([]byte, error) {
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("location is required")
	}
	if err := s.policy.Check(location); err != nil {
		return nil, err
	}
	URL := normalise(location)

	object, err := s.fs.Object(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", location, err)
	}
	if object.IsDir() {
		return nil, fmt.Errorf("%s is a directory", location)
	}
	if s.maxSize > 0 && object.Size() > s.maxSize {
		return nil, fmt.Errorf("%w: %s (limit %s)", ErrTooLarge,
			document.FormatFileSize(object.Size()), document.FormatFileSize(s.maxSize))
	}

	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	if err := s.Validate(data); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"location": location,
		"size":     len(data),
	}).Debug("Read input document")
	return data, nil
}

// Write stores data as name under dir and returns the destination URL.
// Local writes hold an exclusive lock on the directory's lock file.
func (s *Store) Write(ctx context.Context, dir, name string, data []byte) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("output directory is required")
	}
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid output filename %q", name)
	}

	if err := s.policy.Check(dir); err != nil {
		return "", err
	}
	base := normalise(dir)
	dest := url.Join(base, name)

	if local, ok := localPath(base); ok {
		if err := os.MkdirAll(local, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}

		fileLock := flock.New(filepath.Join(local, lockFileName))
		locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return "", fmt.Errorf("failed to acquire write lock: %w", err)
		}
		if !locked {
			return "", fmt.Errorf("could not acquire write lock on output directory")
		}
		defer func() {
			if err := fileLock.Unlock(); err != nil {
				s.logger.WithError(err).Warn("Failed to release write lock")
			}
		}()
	}

	if err := s.fs.Upload(ctx, dest, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}

	s.logger.WithFields(logrus.Fields{
		"destination": dest,
		"size":        len(data),
	}).Info("Wrote document")
	return dest, nil
}

// normalise turns a bare path into a file URL.
func normalise(location string) string {
	if strings.Contains(location, "://") {
		return location
	}
	location = expandHome(location)
	if abs, err := filepath.Abs(location); err == nil {
		location = abs
	}
	return file.Scheme + "://" + filepath.ToSlash(location)
}

func localPath(URL string) (string, bool) {
	prefix := file.Scheme + "://"
	if !strings.HasPrefix(URL, prefix) {
		return "", false
	}
	return filepath.FromSlash(strings.TrimPrefix(URL, prefix)), true
}
