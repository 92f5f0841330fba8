package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dentserver/config"
	"dentserver/db"
	"dentserver/models"
	"dentserver/utils"
)

// incidentSearchPaths are the record-local fields the `search` parameter
// scans; the handler additionally matches against the resolved patient
// name, which is what the management screen's search box does.
var incidentSearchPaths = []string{"title", "description", "treatment"}

// CreateIncidentRequest is an appointment create payload. Uploads are raw
// files (base64 data over JSON) converted server-side into the stored
// data-URL attachments.
type CreateIncidentRequest struct {
	PatientID       string      `json:"patientId"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Comments        string      `json:"comments"`
	AppointmentDate string      `json:"appointmentDate"`
	Cost            *float64    `json:"cost,omitempty"`
	Treatment       string      `json:"treatment,omitempty"`
	Status          string      `json:"status,omitempty"`
	NextDate        string      `json:"nextDate,omitempty"`
	Uploads         []db.Upload `json:"uploads,omitempty"`
}

// UpdateIncidentRequest is a partial appointment update. Non-empty
// Uploads replace the attachment list.
type UpdateIncidentRequest struct {
	models.IncidentPatch
	Uploads []db.Upload `json:"uploads,omitempty"`
}

// respondIncidentError maps repository errors to responses, keeping
// validation failures (recoverable, field-listed) distinct from the rest.
func respondIncidentError(c *gin.Context, err error) {
	var vErr *db.ValidationError
	if errors.As(err, &vErr) {
		utils.GinBadRequest(c, fmt.Sprintf("Validation failed. Missing or invalid fields: %s.", strings.Join(vErr.Fields, ", ")))
		return
	}
	utils.GinInternalServerError(c, fmt.Sprintf("Appointment operation failed: %v", err))
}

// ListIncidentsHandler returns the appointment book, optionally filtered.
// @Summary      List Appointments
// @Description  Returns all appointment records in insertion order. `search` matches (case-insensitive) against title, description, treatment and the resolved patient name; `filter` takes the same `path op value` conditions as the patient list, e.g. `status eq "Pending"` or `cost gte 100`.
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Param        search  query  string   false  "Substring to search for."
// @Param        filter  query  []string false  "Filter condition(s)." collectionFormat(multi)
// @Success      200  {array}   models.Incident "The matching appointment records."
// @Failure      400  {object}  utils.APIError  "Bad Request: a filter expression failed to parse."
// @Failure      401  {object}  utils.APIError  "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError  "Forbidden: requires the Admin role."
// @Router       /appointments [get]
func ListIncidentsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	conds, err := db.ParseFilters(c.QueryArray("filter"))
	if err != nil {
		utils.GinBadRequest(c, err.Error())
		return
	}
	search := c.Query("search")

	incidents := database.ListIncidents()
	patients := database.ListPatients()

	out := make([]models.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if !db.MatchRecord(inc, conds, "", nil) {
			continue
		}
		if search != "" {
			nameHit := strings.Contains(strings.ToLower(db.PatientName(patients, inc.PatientID)), strings.ToLower(search))
			if !nameHit && !db.MatchRecord(inc, nil, search, incidentSearchPaths) {
				continue
			}
		}
		out = append(out, inc)
	}
	c.JSON(http.StatusOK, out)
}

// GetIncidentHandler retrieves a single appointment record.
// @Summary      Get Appointment
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Appointment id"
// @Success      200  {object}  models.Incident
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Admin role."
// @Failure      404  {object}  utils.APIError "Not Found: no appointment with this id."
// @Router       /appointments/{id} [get]
func GetIncidentHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	incident, found := database.GetIncident(c.Param("id"))
	if !found {
		utils.GinNotFound(c, fmt.Sprintf("Appointment '%s' not found.", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, incident)
}

// CreateIncidentHandler schedules a new appointment.
// @Summary      Create Appointment
// @Description  Creates an appointment. `patientId`, `title`, `description` and a parseable `appointmentDate` (e.g. `2025-07-01T10:00:00`) are required; a negative `cost` is rejected. On a validation failure nothing is written and the offending fields are listed.
// @Description
// @Description  `uploads` are converted concurrently into self-contained data-URL attachments; any single conversion failure fails the whole request (and, again, nothing is written). The referenced patient is NOT required to exist — an orphan patientId renders as "Unknown" on the dashboards.
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        appointment body CreateIncidentRequest true "The appointment fields plus optional raw uploads."
// @Success      201  {object}  models.Incident "The created record, including its assigned id."
// @Failure      400  {object}  utils.APIError  "Bad Request: malformed body or validation failure (missing/invalid fields listed)."
// @Failure      401  {object}  utils.APIError  "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError  "Forbidden: requires the Admin role."
// @Router       /appointments [post]
func CreateIncidentHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	var req CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	input := models.Incident{
		PatientID:       req.PatientID,
		Title:           req.Title,
		Description:     req.Description,
		Comments:        req.Comments,
		AppointmentDate: req.AppointmentDate,
		Cost:            req.Cost,
		Treatment:       req.Treatment,
		Status:          req.Status,
		NextDate:        req.NextDate,
	}

	created, err := database.CreateIncident(input, req.Uploads)
	if err != nil {
		respondIncidentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateIncidentHandler merges a partial update onto an appointment.
// @Summary      Update Appointment
// @Description  Shallow-merges the supplied fields onto the existing record and re-validates the result; a merge that would clear a required field is rejected and nothing is written. Non-empty `uploads` replace the attachment list.
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "Appointment id"
// @Param        patch body  UpdateIncidentRequest  true  "The fields to change plus optional raw uploads."
// @Success      200  {object}  models.Incident "The merged record."
// @Failure      400  {object}  utils.APIError  "Bad Request: malformed body or validation failure."
// @Failure      401  {object}  utils.APIError  "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError  "Forbidden: requires the Admin role."
// @Failure      404  {object}  utils.APIError  "Not Found: no appointment with this id (the update was a no-op)."
// @Router       /appointments/{id} [put]
func UpdateIncidentHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	var req UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	updated, found, err := database.UpdateIncident(c.Param("id"), req.IncidentPatch, req.Uploads)
	if err != nil {
		respondIncidentError(c, err)
		return
	}
	if !found {
		utils.GinNotFound(c, fmt.Sprintf("Appointment '%s' not found.", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteIncidentHandler removes an appointment record.
// @Summary      Delete Appointment
// @Tags         Appointments
// @Security     BearerAuth
// @Param        id  path  string  true  "Appointment id"
// @Success      204  "Deleted."
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Admin role."
// @Failure      404  {object}  utils.APIError "Not Found: no appointment with this id."
// @Router       /appointments/{id} [delete]
func DeleteIncidentHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	removed, err := database.DeleteIncident(c.Param("id"))
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to delete appointment: %v", err))
		return
	}
	if !removed {
		utils.GinNotFound(c, fmt.Sprintf("Appointment '%s' not found.", c.Param("id")))
		return
	}
	c.Status(http.StatusNoContent)
}
