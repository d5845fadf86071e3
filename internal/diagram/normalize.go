package diagram

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// Name length constraints enforced client-side before any network call.
const (
	MinNameLength = 3
	MaxNameLength = 100
)

// ErrInvalidName is wrapped by ValidateName failures.
var ErrInvalidName = errors.New("invalid diagram name")

// ValidateName checks the business constraints on a diagram name. The
// backend gateway is deliberately not responsible for this; callers must
// validate before issuing a create or rename.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if n < MinNameLength {
		return fmt.Errorf("%w: name must be at least %d characters", ErrInvalidName, MinNameLength)
	}
	if n > MaxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidName, MaxNameLength)
	}
	return nil
}

// Normalize fills identity gaps in a diagram received from the backend and
// repairs participant-list invariants. The backend under-populates owner and
// participant fields on some endpoints; precedence is:
//
//  1. a non-empty backend value always wins;
//  2. gaps in the owner are filled from ctxUser when the IDs match
//     (or when the backend omitted the owner ID entirely);
//  3. the owner is stripped from SharedParticipants and duplicate
//     participant IDs are dropped, first occurrence wins.
//
// Timestamps are repaired so UpdatedAt is never before CreatedAt.
func Normalize(d Diagram, ctxUser Participant) Diagram {
	if d.Owner.ID == "" {
		d.Owner.ID = ctxUser.ID
	}
	if d.Owner.ID == ctxUser.ID {
		d.Owner = fillParticipant(d.Owner, ctxUser)
	}

	seen := make(map[string]bool, len(d.SharedParticipants))
	shared := make([]Participant, 0, len(d.SharedParticipants))
	for _, p := range d.SharedParticipants {
		if p.ID == "" || p.ID == d.Owner.ID || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if p.ID == ctxUser.ID {
			p = fillParticipant(p, ctxUser)
		}
		shared = append(shared, p)
	}
	d.SharedParticipants = shared

	if d.CreatedAt.IsZero() {
		d.CreatedAt = d.UpdatedAt
	}
	if d.UpdatedAt.Before(d.CreatedAt) {
		d.UpdatedAt = d.CreatedAt
	}
	return d
}

// fillParticipant overlays empty fields of p with values from src.
func fillParticipant(p, src Participant) Participant {
	if p.FirstName == "" {
		p.FirstName = src.FirstName
	}
	if p.LastName == "" {
		p.LastName = src.LastName
	}
	if p.Email == "" {
		p.Email = src.Email
	}
	return p
}

// Touch advances UpdatedAt to now, keeping the invariant that any mutation
// of name or participants moves the timestamp forward.
func (d *Diagram) Touch(now time.Time) {
	if now.After(d.UpdatedAt) {
		d.UpdatedAt = now
	}
}
