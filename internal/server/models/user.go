// Package models defines server-side data models persisted in the database.
package models

import "time"

// Role is a closed enumeration of account types. Role-specific behavior is
// dispatched by explicit matching on this value.
type Role string

const (
	RoleStudent       Role = "student"
	RoleOrganizer     Role = "organizer"
	RoleAdministrator Role = "administrator"
)

// User is a platform account. Organizer-specific fields are only meaningful
// when Role is RoleOrganizer.
//
// At most one of the verification/two-factor codes is live at a time per
// flow; both are cleared immediately after successful use.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string
	Role         Role

	EmailVerified          bool
	VerificationCode       *string
	VerificationCodeExpiry *time.Time
	TwoFactorCode          *string
	TwoFactorCodeExpiry    *time.Time

	// Organizer-only.
	OrganizationName string
	IsApproved       bool

	CreatedAt time.Time
}

// DisplayName is the user's human-readable name as shown in scan messages
// and notification emails.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
