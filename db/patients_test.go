package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentserver/models"
)

func strPtr(s string) *string { return &s }

func TestCreatePatient_AssignsDistinctIDs(t *testing.T) {
	database := newTestDB(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		p, err := database.CreatePatient(models.Patient{Name: fmt.Sprintf("Patient %d", i)})
		require.NoError(t, err)
		require.NotEmpty(t, p.ID)
		assert.False(t, seen[p.ID], "id %s assigned twice", p.ID)
		seen[p.ID] = true
	}
}

func TestCreatePatient_Defaults(t *testing.T) {
	database := newTestDB(t)

	p, err := database.CreatePatient(models.Patient{Name: "Jane Roe"})
	require.NoError(t, err)
	assert.Equal(t, "active", p.Status)
	assert.Equal(t, time.Now().Format("2006-01-02"), p.LastVisit)

	// Explicit values are not overwritten.
	p2, err := database.CreatePatient(models.Patient{Name: "Old Chart", Status: "archived", LastVisit: "2020-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "archived", p2.Status)
	assert.Equal(t, "2020-01-01", p2.LastVisit)
}

func TestListPatients_InsertionOrder(t *testing.T) {
	database := newTestDB(t)

	names := []string{"Alpha", "Bravo", "Charlie"}
	for _, name := range names {
		_, err := database.CreatePatient(models.Patient{Name: name})
		require.NoError(t, err)
	}

	patients := database.ListPatients()
	require.Len(t, patients, 3)
	for i, name := range names {
		assert.Equal(t, name, patients[i].Name)
	}
}

func TestUpdatePatient_MergesAndPreservesOrder(t *testing.T) {
	database := newTestDB(t)

	first, err := database.CreatePatient(models.Patient{Name: "First", Contact: "111"})
	require.NoError(t, err)
	second, err := database.CreatePatient(models.Patient{Name: "Second", Contact: "222"})
	require.NoError(t, err)

	merged, found, err := database.UpdatePatient(first.ID, models.PatientPatch{Contact: strPtr("999")})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "999", merged.Contact)
	assert.Equal(t, "First", merged.Name, "fields not in the patch are untouched")

	patients := database.ListPatients()
	require.Len(t, patients, 2)
	assert.Equal(t, first.ID, patients[0].ID, "update preserves stored order")
	assert.Equal(t, "999", patients[0].Contact)
	assert.Equal(t, second, patients[1], "other records are unchanged")
}

func TestUpdatePatient_AbsentIDIsNoOp(t *testing.T) {
	database := newTestDB(t)
	_, err := database.CreatePatient(models.Patient{Name: "Only"})
	require.NoError(t, err)

	before := database.ListPatients()
	_, found, err := database.UpdatePatient("p-missing", models.PatientPatch{Name: strPtr("Ghost")})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, database.ListPatients(), "a no-op update changes nothing")
}

func TestDeletePatient(t *testing.T) {
	database := newTestDB(t)

	p1, err := database.CreatePatient(models.Patient{Name: "Keep"})
	require.NoError(t, err)
	p2, err := database.CreatePatient(models.Patient{Name: "Drop"})
	require.NoError(t, err)

	removed, err := database.DeletePatient(p2.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	patients := database.ListPatients()
	require.Len(t, patients, 1)
	assert.Equal(t, p1.ID, patients[0].ID)

	// Deleting an absent id is a no-op with the same size afterwards.
	removed, err = database.DeletePatient(p2.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, database.ListPatients(), 1)
}

func TestGetPatient(t *testing.T) {
	database := newTestDB(t)
	created, err := database.CreatePatient(models.Patient{Name: "Findable"})
	require.NoError(t, err)

	got, found := database.GetPatient(created.ID)
	assert.True(t, found)
	assert.Equal(t, created, got)

	_, found = database.GetPatient("p-missing")
	assert.False(t, found)
}
