package db

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"dentserver/models"
	"dentserver/utils"
)

// ValidationError reports the required fields missing or invalid on an
// incident create/update. It is recoverable: nothing is written and the
// caller re-prompts.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// Upload is a raw file input attached to an incident before conversion.
// Data arrives base64-encoded over JSON.
type Upload struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// ListIncidents returns the current appointment collection in insertion
// order. An absent or malformed collection reads as empty.
func (db *Database) ListIncidents() []models.Incident {
	incidents := []models.Incident{}
	db.Read(models.CollectionIncidents, &incidents)
	return incidents
}

// GetIncident retrieves an incident by id.
func (db *Database) GetIncident(id string) (models.Incident, bool) {
	for _, inc := range db.ListIncidents() {
		if inc.ID == id {
			return inc, true
		}
	}
	return models.Incident{}, false
}

// validateIncident checks the required-field contract shared by create and
// update. patientId is only checked for presence: an id that matches no
// patient is stored as-is and renders as "Unknown" downstream.
func validateIncident(inc models.Incident) error {
	var bad []string
	if strings.TrimSpace(inc.PatientID) == "" {
		bad = append(bad, "patientId")
	}
	if strings.TrimSpace(inc.Title) == "" {
		bad = append(bad, "title")
	}
	if strings.TrimSpace(inc.Description) == "" {
		bad = append(bad, "description")
	}
	if _, ok := parseClinicTime(inc.AppointmentDate); !ok {
		bad = append(bad, "appointmentDate")
	}
	if inc.Cost != nil && *inc.Cost < 0 {
		bad = append(bad, "cost")
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

// CreateIncident validates the input, converts any raw uploads to inline
// attachments, assigns a fresh id and persists the collection. On a
// validation or conversion failure nothing is written.
func (db *Database) CreateIncident(input models.Incident, uploads []Upload) (models.Incident, error) {
	if input.Status == "" {
		input.Status = models.StatusPending
	}
	if err := validateIncident(input); err != nil {
		return models.Incident{}, err
	}

	files, err := EncodeAttachments(uploads)
	if err != nil {
		return models.Incident{}, err
	}
	if input.Files == nil {
		input.Files = []models.File{}
	}
	input.Files = append(input.Files, files...)

	input.ID = utils.GenerateRecordID("i")

	incidents := db.ListIncidents()
	incidents = append(incidents, input)
	if err := db.Write(models.CollectionIncidents, incidents); err != nil {
		return models.Incident{}, err
	}
	log.Printf("INFO: Created Incident ID: %s, Patient: %s, Title: %s", input.ID, input.PatientID, input.Title)
	return input, nil
}

// UpdateIncident merges the patch onto the record with the given id,
// re-validates the merged result, and persists the collection in place.
// Non-empty uploads replace the attachment list. An absent id is a no-op
// reported through the boolean.
func (db *Database) UpdateIncident(id string, patch models.IncidentPatch, uploads []Upload) (models.Incident, bool, error) {
	if len(uploads) > 0 {
		files, err := EncodeAttachments(uploads)
		if err != nil {
			return models.Incident{}, false, err
		}
		patch.Files = files
	}

	incidents := db.ListIncidents()
	for i := range incidents {
		if incidents[i].ID != id {
			continue
		}
		merged := incidents[i]
		patch.ApplyTo(&merged)
		if err := validateIncident(merged); err != nil {
			return models.Incident{}, true, err
		}
		incidents[i] = merged
		if err := db.Write(models.CollectionIncidents, incidents); err != nil {
			return models.Incident{}, false, err
		}
		log.Printf("INFO: Updated Incident ID: %s", id)
		return merged, true, nil
	}
	return models.Incident{}, false, nil
}

// DeleteIncident removes the record with the given id and persists the
// remaining collection. Returns false (no-op) when the id is absent.
func (db *Database) DeleteIncident(id string) (bool, error) {
	incidents := db.ListIncidents()

	remaining := make([]models.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if inc.ID != id {
			remaining = append(remaining, inc)
		}
	}
	if len(remaining) == len(incidents) {
		return false, nil
	}
	if err := db.Write(models.CollectionIncidents, remaining); err != nil {
		return false, err
	}
	log.Printf("INFO: Deleted Incident ID: %s", id)
	return true, nil
}

// encodeConcurrency bounds the attachment conversion gather.
const encodeConcurrency = 4

// EncodeAttachments converts raw uploads into self-contained data URLs
// (data:<mime>;base64,<payload>), preserving input order. The conversions
// run as a structured gather: any single failure cancels the batch and is
// returned to the caller instead of stalling it.
func EncodeAttachments(uploads []Upload) ([]models.File, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	files := make([]models.File, len(uploads))
	var g errgroup.Group
	g.SetLimit(encodeConcurrency)

	for i, up := range uploads {
		i, up := i, up
		g.Go(func() error {
			if strings.TrimSpace(up.Name) == "" {
				return fmt.Errorf("attachment %d has no filename", i)
			}
			if len(up.Data) == 0 {
				return fmt.Errorf("attachment '%s' is empty", up.Name)
			}
			mimeType := http.DetectContentType(up.Data)
			files[i] = models.File{
				Name: up.Name,
				URL:  fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(up.Data)),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to encode attachments: %w", err)
	}
	return files, nil
}
