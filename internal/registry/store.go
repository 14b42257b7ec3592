package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one persisted symbol universe. It survives process restarts so
// a restart inside the TTL window does not re-hit the listing endpoints.
type Entry struct {
	FetchedAt time.Time `json:"fetched_at"`
	Tokens    []string  `json:"tokens"`
}

// Fresh reports whether the entry is still within its TTL at now.
func (e *Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return e != nil && now.Sub(e.FetchedAt) < ttl
}

// Store persists the symbol universe. Implementations must be usable
// independently of the aggregation loop (administrative refreshes read
// and write the same record).
type Store interface {
	// Load returns the persisted entry, or nil when none exists yet.
	Load() (*Entry, error)

	// Save replaces the persisted entry wholesale.
	Save(entry *Entry) error
}

// FileStore keeps the entry as a single JSON file under a stable path.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Load() (*Entry, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read symbol cache: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode symbol cache: %w", err)
	}
	return &entry, nil
}

func (fs *FileStore) Save(entry *Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encode symbol cache: %w", err)
	}

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	// Write-then-rename so a crash mid-write never leaves a torn cache.
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write symbol cache: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("replace symbol cache: %w", err)
	}
	return nil
}
