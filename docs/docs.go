// Package docs registers the Swagger spec served at /swagger. The spec is
// maintained by hand at the scale of this API; keep it in sync with the
// annotations on the handlers when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type \"Bearer\" followed by a space and the JWT token."
        }
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log In",
                "description": "Authenticates an email/password pair (plus the role selected on the login form) and returns a Bearer token. Rate limited per client IP.",
                "responses": {
                    "200": {"description": "Token and user record"},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Role mismatch"},
                    "429": {"description": "Rate limited"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log Out",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Logged out"}}
            }
        },
        "/auth/session": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current Session",
                "responses": {
                    "200": {"description": "The active session's user"},
                    "404": {"description": "No active session"}
                }
            }
        },
        "/patients": {
            "get": {
                "tags": ["Patients"],
                "summary": "List Patients",
                "description": "Admin only. Supports 'search' and repeatable 'filter' (path op value) query parameters.",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Patient records"}}
            },
            "post": {
                "tags": ["Patients"],
                "summary": "Create Patient",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created record"}}
            }
        },
        "/patients/{id}": {
            "get": {
                "tags": ["Patients"],
                "summary": "Get Patient",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "The record"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Patients"],
                "summary": "Update Patient (partial merge)",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Merged record"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Patients"],
                "summary": "Delete Patient",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/appointments": {
            "get": {
                "tags": ["Appointments"],
                "summary": "List Appointments",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Appointment records"}}
            },
            "post": {
                "tags": ["Appointments"],
                "summary": "Create Appointment",
                "description": "Requires patientId, title, description and a parseable appointmentDate. Raw uploads are converted into inline data-URL attachments.",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created record"}, "400": {"description": "Validation failure"}}
            }
        },
        "/appointments/{id}": {
            "get": {
                "tags": ["Appointments"],
                "summary": "Get Appointment",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "The record"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Appointments"],
                "summary": "Update Appointment (partial merge)",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Merged record"}, "400": {"description": "Validation failure"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Appointments"],
                "summary": "Delete Appointment",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard KPIs",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "KPI block"}}
            }
        },
        "/dashboard/upcoming": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Next 10 upcoming appointments",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Upcoming appointments with patient names"}}
            }
        },
        "/calendar/week": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Week view (7 day-buckets from Sunday)",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Seven day buckets"}}
            }
        },
        "/calendar/day": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Day view",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Appointments on the day"}}
            }
        },
        "/my/profile": {
            "get": {
                "tags": ["Patient Portal"],
                "summary": "My Patient Record",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "The linked patient record"}, "404": {"description": "No linked record"}}
            }
        },
        "/my/appointments": {
            "get": {
                "tags": ["Patient Portal"],
                "summary": "My Appointments",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "The patient's appointments"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "DentServer API",
	Description:      "Dental practice management backend: role-gated auth, patient and appointment records, dashboard aggregates and a calendar view, persisted in a single JSON store file.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
