package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering with an email already in use.
	ErrEmailTaken = errors.New("email already in use")

	ErrFirstNameRequired = errors.New("first name is required")
	ErrLastNameRequired  = errors.New("last name is required")
	ErrEmailRequired     = errors.New("email is required")
	ErrPasswordRequired  = errors.New("password is required")
	ErrAddressRequired   = errors.New("address is required")
	ErrInvalidNIP        = errors.New("invalid NIP number")
	ErrInvalidRole       = errors.New("invalid role")
)

// Role distinguishes regular customers from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Address is a shipping and billing address.
type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite,omitempty"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

// User is an account holder. Company name and NIP are set only for business
// customers.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CompanyName  string    `json:"company_name,omitempty"`
	NIP          string    `json:"nip,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Address      *Address  `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseRole accepts only the known role names. Anything else falls back to
// the regular user role.
func ParseRole(role string) Role {
	if role == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// Patch carries the self-service profile fields a user may change. Email,
// password and role are deliberately absent.
type Patch struct {
	FirstName   *string
	LastName    *string
	CompanyName *string
	NIP         *string
	Address     *Address
}

// Apply overlays the patch onto the user.
func (p Patch) Apply(user *User) {
	if p.FirstName != nil {
		user.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		user.LastName = *p.LastName
	}
	if p.CompanyName != nil {
		user.CompanyName = *p.CompanyName
	}
	if p.NIP != nil {
		user.NIP = *p.NIP
	}
	if p.Address != nil {
		user.Address = p.Address
	}
}

// Validate checks NIP correctness when one is present.
func (p Patch) Validate() error {
	if p.NIP != nil && *p.NIP != "" && !ValidateNIP(*p.NIP) {
		return ErrInvalidNIP
	}
	return nil
}

// AdminPatch extends Patch with the role field only administrators may set.
type AdminPatch struct {
	Patch
	Role *Role
}

func (p AdminPatch) Apply(user *User) {
	p.Patch.Apply(user)
	if p.Role != nil {
		user.Role = *p.Role
	}
}

func (p AdminPatch) Validate() error {
	if err := p.Patch.Validate(); err != nil {
		return err
	}
	if p.Role != nil && *p.Role != RoleUser && *p.Role != RoleAdmin {
		return ErrInvalidRole
	}
	return nil
}
