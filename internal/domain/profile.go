package domain

import (
	"fmt"
	"time"
)

// Role is the user_role enum.
type Role string

const (
	RoleFarmer     Role = "Farmer"
	RoleOfficer    Role = "Officer"
	RoleResearcher Role = "Researcher"
	RoleAdmin      Role = "Admin"
)

// DefaultRole is assigned at signup. Roles change only out-of-band.
const DefaultRole = RoleFarmer

// ParseRole validates s against the user_role enum.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleFarmer, RoleOfficer, RoleResearcher, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Profile is the 1:1 companion of an authenticated user.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Credentials pairs a profile with its stored password hash.
type Credentials struct {
	Profile
	PasswordHash string `db:"password_hash"`
}

// NewProfile is the insert payload for a profile.
type NewProfile struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	PasswordHash string
}

// Report is a research report submitted by a user.
type Report struct {
	ID          int64     `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	FileURL     *string   `json:"file_url,omitempty" db:"file_url"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
}

// NewReport is the insert payload for a report.
type NewReport struct {
	UserID      string
	Title       string
	Description string
	FileURL     string
}

// ReportView is a report joined with its author's name.
type ReportView struct {
	Report
	AuthorName *string `json:"author_name,omitempty" db:"author_name"`
}

// ContactQuery is a message left through the public contact form.
type ContactQuery struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewContactQuery is the insert payload for a contact query.
type NewContactQuery struct {
	Name    string
	Email   string
	Message string
}
