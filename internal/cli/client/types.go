package client

import (
	"fmt"
	"strconv"
)

// Profile is the user's profile as a set of named fields
// (id, username, email, avatar, bio, ...)
type Profile map[string]any

// Clone returns a shallow copy of the profile
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Field returns a field formatted for display, or "" when absent
func (p Profile) Field(field string) string {
	v, ok := p[field]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// JSON numbers decode as float64
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult represents a successful login
type LoginResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"required,email"`
}

// RegisterResult acknowledges a registration
type RegisterResult struct {
	Message string `json:"message"`
}

// UpdateProfileRequest carries the profile fields to change. Empty fields are left alone.
type UpdateProfileRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=32"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// Fields returns the non-empty fields as a partial profile
func (r UpdateProfileRequest) Fields() Profile {
	partial := Profile{}
	if r.Username != "" {
		partial["username"] = r.Username
	}
	if r.Email != "" {
		partial["email"] = r.Email
	}
	if r.Bio != "" {
		partial["bio"] = r.Bio
	}
	return partial
}

// UpdatePasswordRequest represents a password change
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// Ack is the generic success envelope
type Ack struct {
	Message string `json:"message"`
}

// AvatarResult is returned after an avatar upload
type AvatarResult struct {
	Message   string `json:"message"`
	AvatarURL string `json:"avatar_url"`
}
