package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"
)

// DefaultURLPrefix is where the router serves locally stored uploads
const DefaultURLPrefix = "/static/uploads"

// LocalStore writes uploads into a directory served by the HTTP router
type LocalStore struct {
	fs        billy.Filesystem
	urlPrefix string
}

// NewLocalStore creates a store rooted at dir on the host filesystem
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return NewLocalStoreFS(osfs.New(dir), urlPrefix), nil
}

// NewLocalStoreFS creates a store on an arbitrary billy filesystem
func NewLocalStoreFS(fs billy.Filesystem, urlPrefix string) *LocalStore {
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	return &LocalStore{fs: fs, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Filesystem exposes the backing filesystem
func (s *LocalStore) Filesystem() billy.Filesystem { return s.fs }

// Save writes r under storedName. Two uploads of the same name within one second
// would collide; the later one gets a short random segment after the timestamp.
func (s *LocalStore) Save(ctx context.Context, storedName, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := storedName
	f, err := s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		name = withUniqueSegment(storedName)
		f, err = s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = s.fs.Remove(name)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return s.urlPrefix + "/" + name, nil
}

// Remove implements Uploader
func (s *LocalStore) Remove(ctx context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, s.urlPrefix+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return nil
	}
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

func withUniqueSegment(storedName string) string {
	suffix := uuid.NewString()[:8]
	if i := strings.Index(storedName, "_"); i > 0 {
		return storedName[:i] + "_" + suffix + storedName[i:]
	}
	return suffix + "_" + storedName
}
