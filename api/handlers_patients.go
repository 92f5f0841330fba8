package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"dentserver/config"
	"dentserver/db"
	"dentserver/models"
	"dentserver/utils"
)

// patientSearchPaths are the fields the `search` parameter scans on the
// patient list, matching what the management screen's search box covers.
var patientSearchPaths = []string{"name", "email", "contact"}

// ListPatientsHandler returns the patient register, optionally filtered.
// @Summary      List Patients
// @Description  Returns all patient records in insertion order. Two optional narrowing mechanisms:
// @Description  *   `search`: case-insensitive substring over name, email and contact.
// @Description  *   `filter` (repeatable): `path op value` conditions over the record's JSON, e.g. `status eq "active"`. Supported operators: eq, ne, gt, gte, lt, lte, contains (append `-i` to eq/ne/contains for case-insensitive). Conditions AND together.
// @Tags         Patients
// @Produce      json
// @Security     BearerAuth
// @Param        search  query  string  false  "Substring to search for in name, email or contact."
// @Param        filter  query  []string false "Filter condition(s), e.g. status eq \"active\"." collectionFormat(multi)
// @Success      200  {array}   models.Patient "The matching patient records."
// @Failure      400  {object}  utils.APIError "Bad Request: a filter expression failed to parse."
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Admin role."
// @Router       /patients [get]
func ListPatientsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	conds, err := db.ParseFilters(c.QueryArray("filter"))
	if err != nil {
		utils.GinBadRequest(c, err.Error())
		return
	}
	search := c.Query("search")

	patients := database.ListPatients()
	out := make([]models.Patient, 0, len(patients))
	for _, p := range patients {
		if db.MatchRecord(p, conds, search, patientSearchPaths) {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, out)
}

// GetPatientHandler retrieves a single patient record.
// @Summary      Get Patient
// @Tags         Patients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Patient id"
// @Success      200  {object}  models.Patient
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Admin role."
// @Failure      404  {object}  utils.APIError "Not Found: no patient with this id."
// @Router       /patients/{id} [get]
func GetPatientHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	patient, found := database.GetPatient(c.Param("id"))
	if !found {
		utils.GinNotFound(c, fmt.Sprintf("Patient '%s' not found.", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, patient)
}

// CreatePatientHandler adds a new patient record.
// @Summary      Create Patient
// @Description  Creates a patient chart. The server assigns the id and defaults status to "active" and lastVisit to today when they are not supplied. The intake form enforces no required fields, and neither does this endpoint.
// @Tags         Patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        patient body models.Patient true "The patient fields. Any supplied id is ignored."
// @Success      201  {object}  models.Patient "The created record, including its assigned id."
// @Failure      400  {object}  utils.APIError "Bad Request: malformed JSON body."
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Admin role."
// @Router       /patients [post]
func CreatePatientHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	var input models.Patient
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	created, err := database.CreatePatient(input)
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to create patient: %v", err))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdatePatientHandler merges a partial update onto a patient record.
// @Summary      Update Patient
// @Description  Shallow-merges the supplied fields onto the existing record. Omitted fields are left untouched; the id cannot be changed.
// @Tags         Patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string               true  "Patient id"
// @Param        patch body  models.PatientPatch  true  "The fields to change."
// @Success      200  {object}  models.Patient "The merged record."
// @Failure      400  {object}  utils.APIError "Bad Request: malformed JSON body."
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Admin role."
// @Failure      404  {object}  utils.APIError "Not Found: no patient with this id (the update was a no-op)."
// @Router       /patients/{id} [put]
func UpdatePatientHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	var patch models.PatientPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	updated, found, err := database.UpdatePatient(c.Param("id"), patch)
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to update patient: %v", err))
		return
	}
	if !found {
		utils.GinNotFound(c, fmt.Sprintf("Patient '%s' not found.", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeletePatientHandler removes a patient record.
// @Summary      Delete Patient
// @Description  Removes the record. Appointments referencing the patient are deliberately left in place and will render with an "Unknown" patient name.
// @Tags         Patients
// @Security     BearerAuth
// @Param        id  path  string  true  "Patient id"
// @Success      204  "Deleted."
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Admin role."
// @Failure      404  {object}  utils.APIError "Not Found: no patient with this id."
// @Router       /patients/{id} [delete]
func DeletePatientHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	removed, err := database.DeletePatient(c.Param("id"))
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to delete patient: %v", err))
		return
	}
	if !removed {
		utils.GinNotFound(c, fmt.Sprintf("Patient '%s' not found.", c.Param("id")))
		return
	}
	c.Status(http.StatusNoContent)
}
