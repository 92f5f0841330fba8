package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dentserver/config"
	"dentserver/db"
	"dentserver/models"
	"dentserver/utils"
)

// upcomingLimit is how many appointments the dashboard's "next up" list
// shows.
const upcomingLimit = 10

// UpcomingAppointment is an incident enriched with the resolved patient
// name for direct rendering.
type UpcomingAppointment struct {
	models.Incident
	PatientName string `json:"patientName"`
}

// DashboardStatsHandler returns the admin dashboard's KPI block.
// @Summary      Dashboard KPIs
// @Description  Total patients, total appointments, completed treatments and the revenue sum (appointments without a cost count as $0), recomputed from the live collections on every call.
// @Tags         Dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  db.Stats
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Admin role."
// @Router       /dashboard/stats [get]
func DashboardStatsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	stats := db.ComputeStats(database.ListPatients(), database.ListIncidents())
	c.JSON(http.StatusOK, stats)
}

// UpcomingAppointmentsHandler returns the next appointments from now.
// @Summary      Upcoming Appointments
// @Description  The next 10 appointments dated on or after now, ascending by date-time, with resolved patient names ("Unknown" when the referenced patient no longer exists).
// @Tags         Dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   UpcomingAppointment
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Admin role."
// @Router       /dashboard/upcoming [get]
func UpcomingAppointmentsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	patients := database.ListPatients()
	upcoming := db.UpcomingIncidents(database.ListIncidents(), time.Now(), upcomingLimit)

	out := make([]UpcomingAppointment, len(upcoming))
	for i, inc := range upcoming {
		out[i] = UpcomingAppointment{
			Incident:    inc,
			PatientName: db.PatientName(patients, inc.PatientID),
		}
	}
	c.JSON(http.StatusOK, out)
}

// parseDayParam reads a YYYY-MM-DD query parameter, defaulting to today.
func parseDayParam(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Now(), true
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid %s '%s': expected YYYY-MM-DD.", name, raw))
		return time.Time{}, false
	}
	return day, true
}

// CalendarWeekHandler returns the week view's 7 day-buckets.
// @Summary      Calendar Week
// @Description  Buckets appointments into the 7-day window starting on the most recent Sunday on or before the anchor date (default today). Always returns exactly 7 buckets; days without appointments are empty.
// @Tags         Calendar
// @Produce      json
// @Security     BearerAuth
// @Param        anchor  query  string  false  "Anchor date, YYYY-MM-DD. Defaults to today."
// @Success      200  {array}   db.DaySchedule
// @Failure      400  {object}  utils.APIError "Bad Request: malformed anchor date."
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Admin role."
// @Router       /calendar/week [get]
func CalendarWeekHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	anchor, ok := parseDayParam(c, "anchor")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, db.WeekSchedule(database.ListIncidents(), anchor))
}

// CalendarDayHandler returns the appointments on one day.
// @Summary      Calendar Day
// @Description  The appointments whose date (ignoring time of day) equals the given date (default today).
// @Tags         Calendar
// @Produce      json
// @Security     BearerAuth
// @Param        date  query  string  false  "Date, YYYY-MM-DD. Defaults to today."
// @Success      200  {array}   models.Incident
// @Failure      400  {object}  utils.APIError "Bad Request: malformed date."
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Admin role."
// @Router       /calendar/day [get]
func CalendarDayHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	day, ok := parseDayParam(c, "date")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, db.IncidentsOn(database.ListIncidents(), day))
}

// MyProfileHandler returns the logged-in patient's own chart.
// @Summary      My Patient Record
// @Description  The patient record linked to the logged-in Patient account. 404 when the account's patientId matches no record (the record may have been deleted by the practice).
// @Tags         Patient Portal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.Patient
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Patient role."
// @Failure      404  {object}  utils.APIError "Not Found: no patient record linked to this account."
// @Router       /my/profile [get]
func MyProfileHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	patientID := c.GetString(utils.ContextPatientID)
	patient, found := database.GetPatient(patientID)
	if !found {
		utils.GinNotFound(c, "No patient record is linked to this account.")
		return
	}
	c.JSON(http.StatusOK, patient)
}

// MyAppointmentsHandler returns the logged-in patient's appointments.
// @Summary      My Appointments
// @Description  Every appointment whose patientId matches the logged-in Patient account, in stored order. An account without a linked record gets an empty list.
// @Tags         Patient Portal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Incident
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Failure      403  {object}  utils.APIError "Forbidden: requires the Patient role."
// @Router       /my/appointments [get]
func MyAppointmentsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	patientID := c.GetString(utils.ContextPatientID)
	c.JSON(http.StatusOK, db.IncidentsForPatient(database.ListIncidents(), patientID))
}
