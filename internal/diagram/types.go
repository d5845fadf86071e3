package diagram

import "time"

// Participant is a user reference attached to a diagram, either as the
// owner or as a shared collaborator. Identity is the ID; the remaining
// fields are display data.
type Participant struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Diagram is the shareable collaborative artifact. The owner never changes
// after creation and never appears in SharedParticipants.
type Diagram struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Owner              Participant   `json:"owner"`
	SharedParticipants []Participant `json:"sharedParticipants"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// UpdatePatch is a partial diagram update sent to the backend. Nil fields
// are left untouched server-side.
type UpdatePatch struct {
	Name *string `json:"name,omitempty"`
}

// HasParticipant reports whether userID is the owner or a shared participant.
func (d Diagram) HasParticipant(userID string) bool {
	if d.Owner.ID == userID {
		return true
	}
	for _, p := range d.SharedParticipants {
		if p.ID == userID {
			return true
		}
	}
	return false
}
