package valueobjects

import "errors"

// Principal is what the identity provider yields once authentication
// completes. The reconciliation logic only ever relies on the stable ID; the
// remaining fields are carried for the marketplace surface (role-gated
// dashboards) and for auditing.
type Principal struct {
	id             string
	emailConfirmed bool
	role           string
}

// Marketplace roles as the identity provider reports them
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
)

// NewPrincipal creates a Principal from identity provider claims
func NewPrincipal(id string, emailConfirmed bool, role string) (Principal, error) {
	if id == "" {
		return Principal{}, errors.New("principal id cannot be empty")
	}
	if role == "" {
		role = RoleCustomer
	}
	return Principal{
		id:             id,
		emailConfirmed: emailConfirmed,
		role:           role,
	}, nil
}

// ID returns the stable principal identifier
func (p Principal) ID() string {
	return p.id
}

// EmailConfirmed reports whether the identity provider confirmed the email
func (p Principal) EmailConfirmed() bool {
	return p.emailConfirmed
}

// Role returns the marketplace role
func (p Principal) Role() string {
	return p.role
}

// IsZero checks if the Principal is the zero value
func (p Principal) IsZero() bool {
	return p.id == ""
}
