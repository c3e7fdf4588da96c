// Package user holds the shopper profile document written at sign-up.
package user

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxUsernameLen = 50

var (
	ErrNotFound        = errors.New("user: profile not found")
	ErrInvalidUsername = errors.New("user: username must be 1-50 characters")
)

// Profile is stored at users/{uid}.
type Profile struct {
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// SetUsername trims and stores name.
func (p *Profile) SetUsername(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxUsernameLen {
		return ErrInvalidUsername
	}
	p.Username = name
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now.UTC()
	}
	p.UpdatedAt = now.UTC()
	return nil
}

// SaveFunc edits the profile inside a Save transaction. The profile passed
// in has only UID set when no document exists yet.
type SaveFunc func(p *Profile) error

type Repository interface {
	// Get returns ErrNotFound when the user has no profile document.
	Get(ctx context.Context, uid string) (Profile, error)
	// Save runs read-modify-write on users/{uid} atomically.
	Save(ctx context.Context, uid string, fn SaveFunc) (Profile, error)
}
