package db

import (
	"log"
	"time"

	"dentserver/models"
	"dentserver/utils"
)

// ListPatients returns the current patient collection in insertion order.
// An absent or malformed collection reads as empty.
func (db *Database) ListPatients() []models.Patient {
	patients := []models.Patient{}
	db.Read(models.CollectionPatients, &patients)
	return patients
}

// GetPatient retrieves a patient by id.
func (db *Database) GetPatient(id string) (models.Patient, bool) {
	for _, p := range db.ListPatients() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Patient{}, false
}

// CreatePatient assigns a fresh id, fills the defaults the intake form
// leaves blank (status "active", lastVisit today), appends the record and
// persists the collection. The created record is returned.
func (db *Database) CreatePatient(input models.Patient) (models.Patient, error) {
	patients := db.ListPatients()

	input.ID = utils.GenerateRecordID("p")
	if input.Status == "" {
		input.Status = "active"
	}
	if input.LastVisit == "" {
		input.LastVisit = time.Now().Format("2006-01-02")
	}

	patients = append(patients, input)
	if err := db.Write(models.CollectionPatients, patients); err != nil {
		return models.Patient{}, err
	}
	log.Printf("INFO: Created Patient ID: %s, Name: %s", input.ID, input.Name)
	return input, nil
}

// UpdatePatient merges the patch onto the record with the given id and
// persists the collection, preserving order. An absent id is a no-op
// reported through the boolean, not an error.
func (db *Database) UpdatePatient(id string, patch models.PatientPatch) (models.Patient, bool, error) {
	patients := db.ListPatients()

	for i := range patients {
		if patients[i].ID != id {
			continue
		}
		patch.ApplyTo(&patients[i])
		if err := db.Write(models.CollectionPatients, patients); err != nil {
			return models.Patient{}, false, err
		}
		log.Printf("INFO: Updated Patient ID: %s", id)
		return patients[i], true, nil
	}
	return models.Patient{}, false, nil
}

// DeletePatient removes the record with the given id and persists the
// remaining collection. Returns false (no-op) when the id is absent.
func (db *Database) DeletePatient(id string) (bool, error) {
	patients := db.ListPatients()

	remaining := make([]models.Patient, 0, len(patients))
	for _, p := range patients {
		if p.ID != id {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == len(patients) {
		return false, nil
	}
	if err := db.Write(models.CollectionPatients, remaining); err != nil {
		return false, err
	}
	log.Printf("INFO: Deleted Patient ID: %s", id)
	return true, nil
}
