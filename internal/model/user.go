// Package model defines the data structures used throughout the application.
package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Role is the closed set of user privilege levels.
//
// WHY NOT A PLAIN STRING?
// A string field accepts any value ("Admin", "superuser", ""). A dedicated
// type with exactly two constants turns a typo into a compile error, and the
// Scan/MarshalText methods reject unknown values at the storage and JSON
// boundaries.
type Role uint8

const (
	RoleUser Role = iota
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

// ParseRole converts the stored text form back into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "user":
		return RoleUser, nil
	default:
		return RoleUser, fmt.Errorf("model: unknown role %q", s)
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if r != RoleAdmin && r != RoleUser {
		return nil, fmt.Errorf("model: invalid role %d", r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role as "admin" or "user".
func (r Role) Value() (driver.Value, error) {
	b, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("model: cannot scan %T into Role", src)
	}
}

// User is a User Directory record.
//
// ExternalID is the identity provider's subject (e.g. "github|1234567").
// It is the natural key for upserts; ID is our own xid and never changes.
// Role is assigned once, when the record is created.
type User struct {
	ID         string    `json:"id"         db:"id"`
	ExternalID string    `json:"externalId" db:"external_id"`
	Email      string    `json:"email"      db:"email"`
	Name       string    `json:"name"       db:"name"`
	AvatarURL  string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	Role       Role      `json:"role"       db:"role"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt"  db:"updated_at"`
}

// IsAdmin reports whether u is non-nil and holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
