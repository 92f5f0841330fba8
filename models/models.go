package models

// Role values recognized by the login flow and the route guards.
const (
	RoleAdmin   = "Admin"
	RolePatient = "Patient"
)

// Incident status values. The UI only ever writes these three.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Store collection keys. Each collection is persisted as a unit under its
// key; an absent key is equivalent to an empty collection.
const (
	CollectionUsers     = "users"
	CollectionPatients  = "patients"
	CollectionIncidents = "incidents" // historical name for appointments
	CollectionSession   = "session"
)

// User is a login account. Patient-role users carry the id of the patient
// record they are allowed to see.
type User struct {
	ID           string `json:"id"`
	Role         string `json:"role"` // RoleAdmin or RolePatient
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"` // bcrypt; persisted, never returned by the API
	Name         string `json:"name"`
	PatientID    string `json:"patientId,omitempty"` // set for RolePatient only
}

// Redacted returns a copy safe to hand to API clients.
func (u User) Redacted() User {
	u.PasswordHash = ""
	return u
}

// Patient is one chart in the practice's patient register.
type Patient struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DOB              string `json:"dob"` // YYYY-MM-DD
	Contact          string `json:"contact"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	HealthInfo       string `json:"healthInfo"`
	EmergencyContact string `json:"emergencyContact"`
	InsuranceInfo    string `json:"insuranceInfo"`
	Status           string `json:"status"`    // "active" unless set otherwise
	LastVisit        string `json:"lastVisit"` // YYYY-MM-DD
}

// PatientPatch is a partial update for a Patient. Nil fields are left
// untouched by ApplyTo; the merge contract is explicit rather than a
// dynamic field-by-field copy.
type PatientPatch struct {
	Name             *string `json:"name,omitempty"`
	DOB              *string `json:"dob,omitempty"`
	Contact          *string `json:"contact,omitempty"`
	Email            *string `json:"email,omitempty"`
	Address          *string `json:"address,omitempty"`
	HealthInfo       *string `json:"healthInfo,omitempty"`
	EmergencyContact *string `json:"emergencyContact,omitempty"`
	InsuranceInfo    *string `json:"insuranceInfo,omitempty"`
	Status           *string `json:"status,omitempty"`
	LastVisit        *string `json:"lastVisit,omitempty"`
}

// ApplyTo merges the patch onto p. The record id is never touched.
func (patch PatientPatch) ApplyTo(p *Patient) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.DOB != nil {
		p.DOB = *patch.DOB
	}
	if patch.Contact != nil {
		p.Contact = *patch.Contact
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.HealthInfo != nil {
		p.HealthInfo = *patch.HealthInfo
	}
	if patch.EmergencyContact != nil {
		p.EmergencyContact = *patch.EmergencyContact
	}
	if patch.InsuranceInfo != nil {
		p.InsuranceInfo = *patch.InsuranceInfo
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.LastVisit != nil {
		p.LastVisit = *patch.LastVisit
	}
}

// File is an attachment stored inline on an incident. URL is a
// self-contained data URL (data:<mime>;base64,<payload>) that the client
// uses directly as a download link.
type File struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Incident is an appointment record ("incident" is the historical name and
// survives as the collection key). AppointmentDate and NextDate are local
// date-times without a zone, e.g. "2025-07-01T10:00:00".
type Incident struct {
	ID              string   `json:"id"`
	PatientID       string   `json:"patientId"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Comments        string   `json:"comments"`
	AppointmentDate string   `json:"appointmentDate"`
	Cost            *float64 `json:"cost,omitempty"` // nil = not billed yet
	Treatment       string   `json:"treatment,omitempty"`
	Status          string   `json:"status"`
	NextDate        string   `json:"nextDate,omitempty"`
	Files           []File   `json:"files"`
}

// IncidentPatch is a partial update for an Incident. Files is a full
// replacement of the attachment list when present.
type IncidentPatch struct {
	PatientID       *string  `json:"patientId,omitempty"`
	Title           *string  `json:"title,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Comments        *string  `json:"comments,omitempty"`
	AppointmentDate *string  `json:"appointmentDate,omitempty"`
	Cost            *float64 `json:"cost,omitempty"`
	Treatment       *string  `json:"treatment,omitempty"`
	Status          *string  `json:"status,omitempty"`
	NextDate        *string  `json:"nextDate,omitempty"`
	Files           []File   `json:"files,omitempty"`
}

// ApplyTo merges the patch onto inc. The record id is never touched.
func (patch IncidentPatch) ApplyTo(inc *Incident) {
	if patch.PatientID != nil {
		inc.PatientID = *patch.PatientID
	}
	if patch.Title != nil {
		inc.Title = *patch.Title
	}
	if patch.Description != nil {
		inc.Description = *patch.Description
	}
	if patch.Comments != nil {
		inc.Comments = *patch.Comments
	}
	if patch.AppointmentDate != nil {
		inc.AppointmentDate = *patch.AppointmentDate
	}
	if patch.Cost != nil {
		inc.Cost = patch.Cost
	}
	if patch.Treatment != nil {
		inc.Treatment = *patch.Treatment
	}
	if patch.Status != nil {
		inc.Status = *patch.Status
	}
	if patch.NextDate != nil {
		inc.NextDate = *patch.NextDate
	}
	if patch.Files != nil {
		inc.Files = patch.Files
	}
}
