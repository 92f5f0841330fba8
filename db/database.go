package db

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"dentserver/config"
)

// Backend is the durability layer behind a Database. The store itself is
// collection-oriented and in-memory; a Backend only ever sees the whole
// keyspace at once.
type Backend interface {
	// Load returns the persisted keyspace, or an empty map if nothing has
	// been persisted yet.
	Load() (map[string]json.RawMessage, error)
	// Persist durably writes the whole keyspace.
	Persist(data map[string]json.RawMessage) error
}

// MemoryBackend keeps the keyspace in memory. Used by tests and anywhere
// durability is not wanted.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]json.RawMessage)}
}

func (b *MemoryBackend) Load() (map[string]json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]json.RawMessage, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out, nil
}

func (b *MemoryBackend) Persist(data map[string]json.RawMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make(map[string]json.RawMessage, len(data))
	for k, v := range data {
		b.data[k] = v
	}
	return nil
}

// FileBackend persists the keyspace as one indented JSON document,
// written atomically (temp file + rename) with an optional .bak copy of
// the previous file.
type FileBackend struct {
	Path         string
	EnableBackup bool
}

func (b *FileBackend) Load() (map[string]json.RawMessage, error) {
	fileData, err := os.ReadFile(b.Path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("INFO: Store file '%s' not found. Starting with an empty store.", b.Path)
			return make(map[string]json.RawMessage), nil
		}
		return nil, fmt.Errorf("failed to read store file '%s': %w", b.Path, err)
	}

	data := make(map[string]json.RawMessage)
	if err := json.Unmarshal(fileData, &data); err != nil {
		// Malformed content is treated like an absent store: log it and
		// start empty rather than refusing to boot. The collections the
		// caller asks for will simply come back absent.
		log.Printf("WARN: Store file '%s' is malformed (%v). Starting with an empty store.", b.Path, err)
		return make(map[string]json.RawMessage), nil
	}
	return data, nil
}

func (b *FileBackend) Persist(data map[string]json.RawMessage) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store state: %w", err)
	}

	tempPath := b.Path + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temporary store file '%s': %w", tempPath, err)
	}

	if b.EnableBackup {
		if _, err := os.Stat(b.Path); err == nil {
			backupPath := b.Path + ".bak"
			if err := os.Rename(b.Path, backupPath); err != nil {
				log.Printf("WARN: Failed to rename '%s' to '%s' for backup: %v. Proceeding with save.", b.Path, backupPath, err)
			}
		}
	}

	if err := os.Rename(tempPath, b.Path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary store file into place: %w", err)
	}
	return nil
}

// Database is the persistent store plus the repositories layered on it.
// Collections (users, patients, incidents, session) are opaque JSON blobs
// to this layer; the typed accessors live in the repository files.
//
// All reads and writes are whole-collection. Each Read and Write is
// individually atomic; a read-modify-write sequence is not, so two
// interleaved writers are last-write-wins on the whole collection. The
// target deployment is a single clinic front-desk client, so this is
// accepted and documented rather than guarded.
type Database struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage

	backend      Backend
	saveInterval time.Duration
	bcryptCost   int

	saveTimer   *time.Timer
	savePending bool
	saveMutex   sync.Mutex // guards the save timer logic only
}

// NewDatabase opens the production store: a file-backed keyspace using the
// paths and intervals from the configuration.
func NewDatabase(cfg *config.Config) (*Database, error) {
	backend := &FileBackend{Path: cfg.StoreFilePath, EnableBackup: cfg.EnableBackup}
	db, err := Open(backend, cfg.SaveInterval, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Initialized store from file: %s (%d collections)", cfg.StoreFilePath, len(db.data))
	return db, nil
}

// Open creates a Database on an arbitrary backend. Tests use this with a
// MemoryBackend; NewDatabase uses it with a FileBackend.
func Open(backend Backend, saveInterval time.Duration, bcryptCost int) (*Database, error) {
	data, err := backend.Load()
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = make(map[string]json.RawMessage)
	}
	return &Database{
		data:         data,
		backend:      backend,
		saveInterval: saveInterval,
		bcryptCost:   bcryptCost,
	}, nil
}

// Read unmarshals the named collection into dest. Returns false when the
// collection is absent or its stored content does not decode; callers
// treat both identically and substitute an empty collection or seed
// defaults. Decode failures are logged but never surfaced.
func (db *Database) Read(collection string, dest any) bool {
	db.mu.RLock()
	raw, ok := db.data[collection]
	db.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("WARN: Collection '%s' has malformed content (%v). Treating it as absent.", collection, err)
		return false
	}
	return true
}

// Write replaces the named collection with value and schedules a save.
func (db *Database) Write(collection string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal collection '%s': %w", collection, err)
	}
	db.mu.Lock()
	db.data[collection] = raw
	db.mu.Unlock()
	db.requestSave()
	return nil
}

// Delete removes the named collection entirely and schedules a save.
func (db *Database) Delete(collection string) {
	db.mu.Lock()
	delete(db.data, collection)
	db.mu.Unlock()
	db.requestSave()
}

// persist snapshots the keyspace and hands it to the backend.
func (db *Database) persist() error {
	db.mu.RLock()
	snapshot := make(map[string]json.RawMessage, len(db.data))
	for k, v := range db.data {
		snapshot[k] = v
	}
	db.mu.RUnlock()

	if err := db.backend.Persist(snapshot); err != nil {
		log.Printf("ERROR: Failed to persist store: %v", err)
		return err
	}
	return nil
}

// requestSave is called after every write to trigger a debounced save.
// An interval <= 0 persists immediately.
func (db *Database) requestSave() {
	db.saveMutex.Lock()
	defer db.saveMutex.Unlock()

	if db.saveInterval <= 0 {
		go func() {
			if err := db.persist(); err != nil {
				log.Printf("ERROR: Immediate persist failed: %v", err)
			}
		}()
		return
	}

	// Reset the debounce window.
	if db.saveTimer != nil {
		db.saveTimer.Stop()
	}
	db.savePending = true
	db.saveTimer = time.AfterFunc(db.saveInterval, func() {
		db.saveMutex.Lock()
		if !db.savePending {
			db.saveMutex.Unlock()
			return
		}
		db.savePending = false
		db.saveMutex.Unlock()

		if err := db.persist(); err != nil {
			log.Printf("ERROR: Debounced persist failed: %v", err)
		}
	})
}

// Close flushes any pending save before shutdown.
func (db *Database) Close() error {
	var needsFinalPersist bool

	db.saveMutex.Lock()
	if db.saveTimer != nil {
		db.saveTimer.Stop()
		db.saveTimer = nil
	}
	if db.savePending {
		needsFinalPersist = true
		db.savePending = false
	}
	db.saveMutex.Unlock()

	if needsFinalPersist {
		log.Printf("INFO: Performing final persist on close...")
		return db.persist()
	}
	return nil
}
