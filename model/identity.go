package model

import "time"

// Role is the closed set of user roles in the system.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleMandalOfficer Role = "mandal_officer"
	RoleFieldAgent    Role = "field_agent"
)

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMandalOfficer, RoleFieldAgent:
		return true
	}
	return false
}

// Identity is the authenticated caller's context for one request. It is
// immutable once built by the auth middleware; AssignedSecretariats carries
// the field agent's assignment list in its serialized JSON form and is parsed
// by the access package.
type Identity struct {
	UserID               string `json:"user_id"`
	Role                 Role   `json:"role"`
	Mandal               string `json:"mandal,omitempty"`
	AssignedSecretariats string `json:"assigned_secretariats,omitempty"`
}

// SecretariatAssignment is one (mandal, secretariat) pair from a field
// agent's assignment list.
type SecretariatAssignment struct {
	Mandal      string `json:"mandal"`
	Secretariat string `json:"secretariat"`
}

type User struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	Role                 Role      `json:"role"`
	Mandal               string    `json:"mandal,omitempty"`
	AssignedSecretariats string    `json:"assigned_secretariats,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
