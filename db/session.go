package db

import (
	"errors"
	"log"
	"strings"

	"dentserver/models"
	"dentserver/utils"
)

// ErrInvalidCredentials is returned by Authenticate on any email/password
// mismatch. The login handler maps it to a user-facing message; there is
// no retry or backoff here.
var ErrInvalidCredentials = errors.New("invalid email or password")

// seedAccounts are the two canonical logins provisioned when the users
// collection does not exist yet: the practice admin and a demo patient
// linked to patient record p1.
var seedAccounts = []struct {
	user     models.User
	password string
}{
	{
		user:     models.User{ID: "1", Role: models.RoleAdmin, Email: "admin@entnt.in", Name: "Dr. Smith"},
		password: "admin123",
	},
	{
		user:     models.User{ID: "2", Role: models.RolePatient, Email: "john@entnt.in", Name: "John Doe", PatientID: "p1"},
		password: "patient123",
	},
}

// ListUsers returns the user collection, provisioning the seed accounts
// first when no collection exists. Seeding hashes the well-known demo
// passwords with the configured bcrypt cost before anything is stored.
func (db *Database) ListUsers() []models.User {
	users := []models.User{}
	if db.Read(models.CollectionUsers, &users) && len(users) > 0 {
		return users
	}

	for _, seed := range seedAccounts {
		hash, err := utils.HashPassword(seed.password, db.bcryptCost)
		if err != nil {
			log.Printf("ERROR: Failed to hash seed password for %s: %v", seed.user.Email, err)
			continue
		}
		u := seed.user
		u.PasswordHash = hash
		users = append(users, u)
	}
	if err := db.Write(models.CollectionUsers, users); err != nil {
		log.Printf("ERROR: Failed to persist seeded users: %v", err)
	} else {
		log.Printf("INFO: Seeded %d default user accounts", len(users))
	}
	return users
}

// Authenticate checks the credential pair against the user collection.
// On a match the session is persisted and the user returned; on a mismatch
// ErrInvalidCredentials is returned and the session is left untouched.
//
// Matching the user's role against the role selected on the login form is
// the caller's job, and a mismatch there is reported distinctly from a
// credential mismatch.
func (db *Database) Authenticate(email, password string) (models.User, error) {
	for _, u := range db.ListUsers() {
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if !utils.CheckPasswordHash(password, u.PasswordHash) {
			break // one account per email; no point scanning on
		}
		if err := db.Write(models.CollectionSession, u); err != nil {
			return models.User{}, err
		}
		log.Printf("INFO: Login successful for %s (%s)", u.Email, u.Role)
		return u, nil
	}
	log.Printf("WARN: Login failed for %s", email)
	return models.User{}, ErrInvalidCredentials
}

// CurrentSession returns the persisted active user, if any.
func (db *Database) CurrentSession() (models.User, bool) {
	var u models.User
	if !db.Read(models.CollectionSession, &u) || u.ID == "" {
		return models.User{}, false
	}
	return u, true
}

// ClearSession logs the active user out. It always succeeds, whether or
// not a session existed.
func (db *Database) ClearSession() {
	db.Delete(models.CollectionSession)
	log.Printf("INFO: Session cleared")
}
