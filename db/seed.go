package db

import (
	"log"

	"dentserver/models"
)

// SeedDefaults provisions the demo content a fresh store starts with: the
// two login accounts, one patient chart and one completed incident. Each
// collection is only seeded when absent, so an existing store is never
// touched.
func (db *Database) SeedDefaults() {
	db.ListUsers() // seeds the accounts when the collection is absent

	patients := []models.Patient{}
	if !db.Read(models.CollectionPatients, &patients) {
		patients = []models.Patient{{
			ID:         "p1",
			Name:       "John Doe",
			DOB:        "1990-05-10",
			Contact:    "1234567890",
			HealthInfo: "No allergies",
			Status:     "active",
			LastVisit:  "2025-06-01",
		}}
		if err := db.Write(models.CollectionPatients, patients); err != nil {
			log.Printf("ERROR: Failed to seed patients: %v", err)
		} else {
			log.Printf("INFO: Seeded %d default patient record(s)", len(patients))
		}
	}

	incidents := []models.Incident{}
	if !db.Read(models.CollectionIncidents, &incidents) {
		cost := 80.0
		incidents = []models.Incident{{
			ID:              "i1",
			PatientID:       "p1",
			Title:           "Toothache",
			Description:     "Upper molar pain",
			Comments:        "Sensitive to cold",
			AppointmentDate: "2025-07-01T10:00:00",
			Cost:            &cost,
			Treatment:       "Filling",
			Status:          models.StatusCompleted,
			NextDate:        "2025-08-01T10:00:00",
			Files:           []models.File{},
		}}
		if err := db.Write(models.CollectionIncidents, incidents); err != nil {
			log.Printf("ERROR: Failed to seed incidents: %v", err)
		} else {
			log.Printf("INFO: Seeded %d default incident record(s)", len(incidents))
		}
	}
}
