package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Role is the marketplace role of an account
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleFarmer Role = "farmer"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleFarmer, RoleAdmin:
		return true
	}
	return false
}

// DashboardPath returns where a freshly authenticated user lands
func (r Role) DashboardPath() string {
	switch r {
	case RoleFarmer:
		return "/dashboard/farmer"
	case RoleBuyer:
		return "/dashboard/buyer/orders"
	case RoleAdmin:
		return "/admin"
	default:
		return "/"
	}
}

// Location is a farm's position on the map
type Location struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// User represents the authenticated identity as returned by the backend
type User struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"` // "buyer", "farmer" or "admin"
	Contact    string    `json:"contact,omitempty"`
	FarmName   string    `json:"farmName,omitempty"`
	Location   *Location `json:"location,omitempty"`
	IsVerified bool      `json:"isVerified,omitempty"`
}

// UserRef is a user field on another document. The backend returns either
// the bare id or the populated user.
type UserRef struct {
	User
}

// UnmarshalJSON accepts both `"<id>"` and `{"_id": "<id>", ...}`
func (u *UserRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &u.ID)
	}
	return json.Unmarshal(b, &u.User)
}

// Registration is the sign-up form submitted to /auth/register
type Registration struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Contact         string   `json:"contact"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"-"`
	Role            Role     `json:"role"`
	FarmName        string   `json:"farmName,omitempty"`
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
}

// Normalize trims the free-text fields in place
func (r *Registration) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Contact = strings.TrimSpace(r.Contact)
	r.FarmName = strings.TrimSpace(r.FarmName)
	r.Role = Role(strings.ToLower(strings.TrimSpace(string(r.Role))))
}
