package db

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"dentserver/models"
)

// newTestDB creates a memory-backed store. The bcrypt cost is the minimum
// so seeding stays fast.
func newTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := Open(NewMemoryBackend(), 0, bcrypt.MinCost)
	require.NoError(t, err, "Open failed during setup")
	return database
}

// newFileTestDB creates a file-backed store in a temp dir with a short
// debounce interval. Returns the database and the store file path.
func newFileTestDB(t *testing.T) (*Database, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clinic.json")
	backend := &FileBackend{Path: path, EnableBackup: true}
	database, err := Open(backend, 10*time.Millisecond, bcrypt.MinCost)
	require.NoError(t, err, "Open failed during setup")
	return database, path
}

func TestFileBackend_Load_FileNotFound(t *testing.T) {
	backend := &FileBackend{Path: filepath.Join(t.TempDir(), "missing.json")}
	data, err := backend.Load()
	assert.NoError(t, err, "a missing store file is not an error")
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestFileBackend_Load_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json at all"), 0644))

	backend := &FileBackend{Path: path}
	data, err := backend.Load()
	assert.NoError(t, err, "malformed content must be recovered, not surfaced")
	assert.Empty(t, data, "malformed content reads as an empty keyspace")
}

func TestDatabase_ReadWrite_RoundTrip(t *testing.T) {
	database := newTestDB(t)

	in := []models.Patient{{ID: "p1", Name: "John Doe"}}
	require.NoError(t, database.Write(models.CollectionPatients, in))

	var out []models.Patient
	ok := database.Read(models.CollectionPatients, &out)
	assert.True(t, ok)
	assert.Equal(t, in, out)
}

func TestDatabase_Read_AbsentCollection(t *testing.T) {
	database := newTestDB(t)

	var out []models.Patient
	assert.False(t, database.Read(models.CollectionPatients, &out))
	assert.Empty(t, out)
}

func TestDatabase_Read_MalformedCollection(t *testing.T) {
	database := newTestDB(t)
	database.mu.Lock()
	database.data[models.CollectionPatients] = json.RawMessage(`{"definitely": "not a list"`)
	database.mu.Unlock()

	var out []models.Patient
	assert.False(t, database.Read(models.CollectionPatients, &out), "a decode failure reads as absent")
}

func TestDatabase_Delete(t *testing.T) {
	database := newTestDB(t)
	require.NoError(t, database.Write(models.CollectionSession, models.User{ID: "1"}))

	database.Delete(models.CollectionSession)

	var out models.User
	assert.False(t, database.Read(models.CollectionSession, &out))
}

func TestDatabase_PersistAndReload(t *testing.T) {
	database, path := newFileTestDB(t)

	require.NoError(t, database.Write(models.CollectionPatients, []models.Patient{{ID: "p1", Name: "John Doe"}}))
	require.NoError(t, database.Close(), "Close must flush the pending save")

	_, err := os.Stat(path)
	require.NoError(t, err, "store file should exist after flush")

	// A second database on the same file sees the persisted state.
	reloaded, err := Open(&FileBackend{Path: path}, 10*time.Millisecond, bcrypt.MinCost)
	require.NoError(t, err)
	var out []models.Patient
	require.True(t, reloaded.Read(models.CollectionPatients, &out))
	assert.Len(t, out, 1)
	assert.Equal(t, "John Doe", out[0].Name)
}

func TestDatabase_DebouncedSave(t *testing.T) {
	database, path := newFileTestDB(t)

	require.NoError(t, database.Write(models.CollectionPatients, []models.Patient{{ID: "p1"}}))

	// The write returns before the save; the debounce timer flushes it.
	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 5*time.Millisecond, "debounced save never fired")
}

func TestDatabase_BackupFile(t *testing.T) {
	database, path := newFileTestDB(t)

	require.NoError(t, database.Write(models.CollectionPatients, []models.Patient{{ID: "p1"}}))
	require.NoError(t, database.Close())

	// A second write cycle renames the previous file to .bak.
	require.NoError(t, database.Write(models.CollectionPatients, []models.Patient{{ID: "p1"}, {ID: "p2"}}))
	require.NoError(t, database.Close())

	_, err := os.Stat(path + ".bak")
	assert.NoError(t, err, "backup of the previous store file should exist")
}

func TestDatabase_Close_NoPendingSave(t *testing.T) {
	database, path := newFileTestDB(t)
	require.NoError(t, database.Close())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing was written, nothing should be flushed")
}
