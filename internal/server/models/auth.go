package models

// AuthStatus describes where a caller stands in the authentication flow.
type AuthStatus string

const (
	// StatusEmailVerificationRequired is returned after registration; no
	// token is issued until the email is verified.
	StatusEmailVerificationRequired AuthStatus = "EMAIL_VERIFICATION_REQUIRED"
	// Status2FARequired is returned after a successful credential check for
	// non-administrator accounts; no token is issued until the 2FA code is
	// verified.
	Status2FARequired AuthStatus = "2FA_REQUIRED"
	// StatusAuthenticated accompanies a token.
	StatusAuthenticated AuthStatus = "AUTHENTICATED"
)

// AuthResult is the outcome of an auth-flow operation. Token is empty
// unless Status is StatusAuthenticated.
type AuthResult struct {
	Token     string     `json:"token,omitempty"`
	UserID    int64      `json:"userId"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Role      Role       `json:"role,omitempty"`
	Status    AuthStatus `json:"status"`
}

// RegisterParams carries the fields needed to create an account.
type RegisterParams struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	Phone            string
	Role             Role
	OrganizationName string
}
