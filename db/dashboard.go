package db

import (
	"fmt"
	"sort"
	"time"

	"dentserver/models"
)

// The derived-view engine: pure, stateless transforms over repository
// snapshots. Nothing here is cached; every dashboard read recomputes from
// the current collections, trading a little work for never being stale.

// clinicTimeLayouts are the date-time shapes appointment dates appear in.
// The UI writes zone-less local date-times ("2025-07-01T10:00:00"); the
// rest cover hand-edited store files.
var clinicTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02",
}

// parseClinicTime parses an appointment date-time. The boolean is false
// for anything unparseable; date-based derivations skip such records.
func parseClinicTime(s string) (time.Time, bool) {
	for _, layout := range clinicTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Stats is the KPI block on the admin dashboard.
type Stats struct {
	TotalPatients       int    `json:"totalPatients"`
	TotalAppointments   int    `json:"totalAppointments"`
	CompletedTreatments int    `json:"completedTreatments"`
	Revenue             string `json:"revenue"` // currency-formatted, two decimals
}

// ComputeStats aggregates the dashboard KPIs. An absent cost counts as 0.
// Empty inputs yield zero counts and "$0.00".
func ComputeStats(patients []models.Patient, incidents []models.Incident) Stats {
	stats := Stats{
		TotalPatients:     len(patients),
		TotalAppointments: len(incidents),
	}
	var revenue float64
	for _, inc := range incidents {
		if inc.Status == models.StatusCompleted {
			stats.CompletedTreatments++
		}
		if inc.Cost != nil {
			revenue += *inc.Cost
		}
	}
	stats.Revenue = fmt.Sprintf("$%.2f", revenue)
	return stats
}

// UpcomingIncidents returns the incidents dated on or after now, ascending
// by date-time, capped at limit. The sort is stable, so records with equal
// timestamps keep their stored order. Unparseable dates are skipped.
func UpcomingIncidents(incidents []models.Incident, now time.Time, limit int) []models.Incident {
	type dated struct {
		inc models.Incident
		at  time.Time
	}
	upcoming := make([]dated, 0, len(incidents))
	for _, inc := range incidents {
		at, ok := parseClinicTime(inc.AppointmentDate)
		if !ok || at.Before(now) {
			continue
		}
		upcoming = append(upcoming, dated{inc: inc, at: at})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].at.Before(upcoming[j].at)
	})

	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	out := make([]models.Incident, len(upcoming))
	for i, d := range upcoming {
		out[i] = d.inc
	}
	return out
}

// DaySchedule is one calendar bucket: a day and the incidents on it.
type DaySchedule struct {
	Date      string            `json:"date"` // YYYY-MM-DD
	Incidents []models.Incident `json:"incidents"`
}

// IncidentsOn filters the incidents whose date (ignoring time of day)
// equals day.
func IncidentsOn(incidents []models.Incident, day time.Time) []models.Incident {
	out := []models.Incident{}
	y, m, d := day.Date()
	for _, inc := range incidents {
		at, ok := parseClinicTime(inc.AppointmentDate)
		if !ok {
			continue
		}
		iy, im, id := at.Date()
		if iy == y && im == m && id == d {
			out = append(out, inc)
		}
	}
	return out
}

// WeekSchedule buckets incidents into the 7-day window starting on the
// most recent Sunday on or before the anchor date. Always returns exactly
// 7 buckets, empty days included.
func WeekSchedule(incidents []models.Incident, anchor time.Time) []DaySchedule {
	sunday := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	sunday = sunday.AddDate(0, 0, -int(sunday.Weekday()))

	week := make([]DaySchedule, 7)
	for i := range week {
		day := sunday.AddDate(0, 0, i)
		week[i] = DaySchedule{
			Date:      day.Format("2006-01-02"),
			Incidents: IncidentsOn(incidents, day),
		}
	}
	return week
}

// IncidentsForPatient filters by exact patientId match, stored order.
func IncidentsForPatient(incidents []models.Incident, patientID string) []models.Incident {
	out := []models.Incident{}
	for _, inc := range incidents {
		if inc.PatientID == patientID {
			out = append(out, inc)
		}
	}
	return out
}

// PatientName resolves a patient id to a display name. A lookup miss
// renders as "Unknown" rather than failing: incidents are allowed to
// reference patients that no longer exist.
func PatientName(patients []models.Patient, id string) string {
	for _, p := range patients {
		if p.ID == id {
			return p.Name
		}
	}
	return "Unknown"
}
