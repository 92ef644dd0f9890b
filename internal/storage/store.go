// Package storage persists the vector mapping and the document index as two
// co-located files that are always rewritten together.
package storage

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/hyperjump/emnet/internal/errs"
	"github.com/hyperjump/emnet/internal/vector"
	"go.uber.org/zap"
)

// File names inside the store directory.
const (
	VectorsFile = "vectors.bin"
	IndexFile   = "index.gob"
	LockFile    = ".lock"
)

// indexFile is the gob envelope of the index; a struct keeps an empty index encodable.
type indexFile struct {
	IDs []string
}

// FileStore reads and writes the persisted index in one directory. Access from this
// process is serialized; other processes are excluded with an advisory file lock
// (shared for reads, exclusive for writes).
type FileStore struct {
	dir    string
	flock  *flock.Flock
	mu     sync.Mutex
	logger *zap.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets a logger for store reads and writes.
func WithLogger(l *zap.Logger) Option {
	return func(s *FileStore) { s.logger = l }
}

// NewFileStore returns a store rooted at dir. Nothing is created until the first Save.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		dir:    dir,
		flock:  flock.New(filepath.Join(dir, LockFile)),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Exists reports whether a vector mapping has been written.
func (s *FileStore) Exists() (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, VectorsFile))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %w", errs.ErrStorageRead, err)
}

// Load reads the vector mapping and the index. A store that was never written
// yields errs.ErrNotExist; unreadable or corrupt files yield errs.ErrStorageRead.
func (s *FileStore) Load() (*vector.Mapping, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lockShared(); err != nil {
		return nil, nil, err
	}
	defer s.unlock()

	m, err := s.readMapping()
	if err != nil {
		return nil, nil, err
	}
	index, err := s.readIndex()
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("index store loaded", zap.String("dir", s.dir), zap.Int("documents", m.Len()))
	return m, index, nil
}

// LoadIndex reads only the index.
func (s *FileStore) LoadIndex() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lockShared(); err != nil {
		return nil, err
	}
	defer s.unlock()
	return s.readIndex()
}

// Save replaces both files. Each is written to a temporary file and renamed into
// place; the index is renamed last so a reader never sees an index newer than its vectors.
func (s *FileStore) Save(m *vector.Mapping, index []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: create store dir: %w", errs.ErrStorageWrite, err)
	}
	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("%w: acquire lock: %w", errs.ErrStorageWrite, err)
	}
	defer s.unlock()

	vecTmp, err := s.writeTemp("vectors-*.tmp", m.Encode)
	if err != nil {
		return err
	}
	idxTmp, err := s.writeTemp("index-*.tmp", func(w io.Writer) error {
		return gob.NewEncoder(w).Encode(indexFile{IDs: index})
	})
	if err != nil {
		_ = os.Remove(vecTmp)
		return err
	}
	if err := os.Rename(vecTmp, filepath.Join(s.dir, VectorsFile)); err != nil {
		_ = os.Remove(vecTmp)
		_ = os.Remove(idxTmp)
		return fmt.Errorf("%w: replace vectors: %w", errs.ErrStorageWrite, err)
	}
	if err := os.Rename(idxTmp, filepath.Join(s.dir, IndexFile)); err != nil {
		_ = os.Remove(idxTmp)
		return fmt.Errorf("%w: replace index: %w", errs.ErrStorageWrite, err)
	}
	s.logger.Debug("index store saved", zap.String("dir", s.dir), zap.Int("documents", m.Len()))
	return nil
}

// DiskUsage returns the total size in bytes of the files in the store directory.
// A missing directory counts as zero.
func (s *FileStore) DiskUsage() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	return total, err
}

func (s *FileStore) lockShared() error {
	if _, err := os.Stat(s.dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.ErrNotExist
		}
		return fmt.Errorf("%w: %w", errs.ErrStorageRead, err)
	}
	if err := s.flock.RLock(); err != nil {
		return fmt.Errorf("%w: acquire shared lock: %w", errs.ErrStorageRead, err)
	}
	return nil
}

func (s *FileStore) unlock() {
	if err := s.flock.Unlock(); err != nil {
		s.logger.Warn("index store unlock failed", zap.String("dir", s.dir), zap.Error(err))
	}
}

func (s *FileStore) readMapping() (*vector.Mapping, error) {
	f, err := os.Open(filepath.Join(s.dir, VectorsFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.ErrNotExist
		}
		return nil, fmt.Errorf("%w: open vectors: %w", errs.ErrStorageRead, err)
	}
	defer f.Close()
	m, err := vector.DecodeMapping(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", VectorsFile, err)
	}
	return m, nil
}

func (s *FileStore) readIndex() ([]string, error) {
	f, err := os.Open(filepath.Join(s.dir, IndexFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, verr := os.Stat(filepath.Join(s.dir, VectorsFile)); errors.Is(verr, fs.ErrNotExist) {
				return nil, errs.ErrNotExist
			}
			return nil, fmt.Errorf("%w: %s is missing", errs.ErrStorageRead, IndexFile)
		}
		return nil, fmt.Errorf("%w: open index: %w", errs.ErrStorageRead, err)
	}
	defer f.Close()
	var idx indexFile
	if err := gob.NewDecoder(f).Decode(&idx); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", errs.ErrStorageRead, IndexFile, err)
	}
	return idx.IDs, nil
}

func (s *FileStore) writeTemp(pattern string, write func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(s.dir, pattern)
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %w", errs.ErrStorageWrite, err)
	}
	name := f.Name()
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: encode %s: %w", errs.ErrStorageWrite, name, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: sync %s: %w", errs.ErrStorageWrite, name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: close %s: %w", errs.ErrStorageWrite, name, err)
	}
	return name, nil
}
