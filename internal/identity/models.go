// Package identity owns accounts and their citizen/official profiles.
package identity

import (
	"time"

	id "mobywatel/pkg/domain"
)

// Role of an account. Immutable after creation.
type Role string

const (
	RoleCitizen  Role = "CITIZEN"
	RoleOfficial Role = "OFFICIAL"
	RoleAdmin    Role = "ADMIN"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Account is the authentication principal. At most one profile (Citizen or
// Official) hangs off an account.
type Account struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Citizen is the registered end-user whose civil documents the system
// manages. Deleting a citizen cascades to their documents and requests.
type Citizen struct {
	ID        id.CitizenID
	AccountID id.UserID
	FirstName string
	LastName  string
	BirthDate time.Time
	PESEL     string
	Gender    Gender
}

// Official is a staff profile authorized to process requests and issue
// documents.
type Official struct {
	ID        id.OfficialID
	AccountID id.UserID
	FirstName string
	LastName  string
	Position  string
}
