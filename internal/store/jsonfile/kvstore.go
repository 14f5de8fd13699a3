package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// ErrKeyNotFound is returned when a key does not exist for the store's origin.
var ErrKeyNotFound = errors.New("key not found")

// Entry is a single stored value with metadata.
type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bucket holds the entries of one origin.
type Bucket struct {
	Entries map[string]Entry `json:"entries"`
}

// KVFile is the root JSON structure stored on disk. Entries are grouped by
// origin so credentials issued by one backend are never read for another.
type KVFile struct {
	Origins map[string]Bucket `json:"origins"`
}

// KVStore is a JSON file key-value store scoped to a single origin.
// Several processes may share the file; access is serialized with flock.
type KVStore struct {
	path   string
	origin string
	mu     sync.RWMutex
}

// NewKVStore creates a new JSON file KV store at the given path, scoped to origin.
func NewKVStore(path, origin string) *KVStore {
	return &KVStore{path: path, origin: origin}
}

// Path returns the backing file path.
func (s *KVStore) Path() string {
	return s.path
}

// Origin returns the origin the store is scoped to.
func (s *KVStore) Origin() string {
	return s.origin
}

// lockPath returns the path to the lock file.
func (s *KVStore) lockPath() string {
	return s.path + ".lock"
}

// withSharedLock executes fn while holding a shared (read) file lock.
func (s *KVStore) withSharedLock(fn func() error) error {
	return s.withFileLock(syscall.LOCK_SH, fn)
}

// withExclusiveLock executes fn while holding an exclusive (write) file lock.
func (s *KVStore) withExclusiveLock(fn func() error) error {
	return s.withFileLock(syscall.LOCK_EX, fn)
}

// withFileLock acquires a file lock, executes fn, then releases the lock.
func (s *KVStore) withFileLock(lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// Get returns an entry by key. Returns ErrKeyNotFound if not found.
func (s *KVStore) Get(ctx context.Context, key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entry Entry
	var found bool

	err := s.withSharedLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		entry, found = file.Origins[s.origin].Entries[key]
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	if !found {
		return Entry{}, ErrKeyNotFound
	}

	return entry, nil
}

// Values returns every value stored for the origin, keyed by entry key.
func (s *KVStore) Values(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[string]string)

	err := s.withSharedLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		for k, e := range file.Origins[s.origin].Entries {
			values[k] = e.Value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return values, nil
}

// Set creates or updates an entry.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.SetValues(ctx, map[string]string{key: value})
}

// SetValues creates or updates several entries in a single write. Empty values
// delete the entry.
func (s *KVStore) SetValues(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withExclusiveLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		bucket := file.bucket(s.origin)
		now := time.Now()

		for key, value := range values {
			if value == "" {
				delete(bucket.Entries, key)
				continue
			}

			entry, exists := bucket.Entries[key]
			if exists {
				entry.Value = value
				entry.UpdatedAt = now
			} else {
				entry = Entry{
					Key:       key,
					Value:     value,
					CreatedAt: now,
					UpdatedAt: now,
				}
			}
			bucket.Entries[key] = entry
		}

		file.Origins[s.origin] = bucket
		return s.save(file)
	})
}

// Clear removes every entry for the origin. Other origins are untouched.
func (s *KVStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withExclusiveLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		if _, ok := file.Origins[s.origin]; !ok {
			return nil
		}

		delete(file.Origins, s.origin)
		return s.save(file)
	})
}

func (f *KVFile) bucket(origin string) Bucket {
	b, ok := f.Origins[origin]
	if !ok || b.Entries == nil {
		b = Bucket{Entries: make(map[string]Entry)}
	}
	return b
}

// load reads the KV file from disk.
// Returns an empty KVFile if the file doesn't exist.
func (s *KVStore) load() (KVFile, error) {
	empty := KVFile{Origins: make(map[string]Bucket)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return KVFile{}, err
	}

	if len(data) == 0 {
		return empty, nil
	}

	var file KVFile
	if err := json.Unmarshal(data, &file); err != nil {
		return KVFile{}, fmt.Errorf("parse %s: %w", s.path, err)
	}

	if file.Origins == nil {
		file.Origins = make(map[string]Bucket)
	}

	return file, nil
}

// save writes the KV file to disk atomically. The file holds credentials, so it
// is only readable by the owner.
func (s *KVStore) save(file KVFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp) // best effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
