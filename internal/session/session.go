// Package session carries the authenticated user identity and credential
// into the synchronization layer. The session itself (login, refresh,
// persistence) is owned by the caller; this package only defines the
// read-only view the core consumes.
package session

import "github.com/lgmendez/diasync/internal/diagram"

// User is the current authenticated identity.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// Valid reports whether the session carries a usable identity.
func (u User) Valid() bool {
	return u.ID != ""
}

// Participant returns the user as a diagram participant reference, used to
// back-fill identity fields the backend omits.
func (u User) Participant() diagram.Participant {
	return diagram.Participant{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
