package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lgmendez/diasync/internal/db"
	"github.com/lgmendez/diasync/internal/diagram"
)

// Store errors surfaced to the HTTP layer.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("already exists")
)

// User is a registered account on the reference server.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Store provides CRUD operations for users, diagrams, and participants.
type Store struct {
	db *db.DB
}

// NewStore creates a diagram store over the given database.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// CreateUser inserts a new user, assigning an id when absent.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, email) VALUES (?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Email,
	)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUserByEmail looks a user up by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// CreateDiagram inserts a diagram owned by ownerID.
func (s *Store) CreateDiagram(ctx context.Context, name, ownerID string) (diagram.Diagram, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO diagrams (id, name, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, ownerID, now, now,
	)
	if err != nil {
		return diagram.Diagram{}, fmt.Errorf("creating diagram: %w", err)
	}
	return s.GetDiagram(ctx, id)
}

// GetDiagram loads one diagram with its owner and participants.
func (s *Store) GetDiagram(ctx context.Context, id string) (diagram.Diagram, error) {
	var d diagram.Diagram
	err := s.db.QueryRowContext(ctx,
		`SELECT d.id, d.name, d.created_at, d.updated_at,
		        u.id, u.first_name, u.last_name, u.email
		 FROM diagrams d JOIN users u ON u.id = d.owner_id
		 WHERE d.id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt,
		&d.Owner.ID, &d.Owner.FirstName, &d.Owner.LastName, &d.Owner.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return diagram.Diagram{}, ErrNotFound
	}
	if err != nil {
		return diagram.Diagram{}, fmt.Errorf("getting diagram: %w", err)
	}

	participants, err := s.listParticipants(ctx, id)
	if err != nil {
		return diagram.Diagram{}, err
	}
	d.SharedParticipants = participants
	return d, nil
}

// ListByUser returns all diagrams the user owns or is shared into, ordered
// by creation time.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]diagram.Diagram, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT d.id FROM diagrams d
		 LEFT JOIN diagram_participants p ON p.diagram_id = d.id
		 WHERE d.owner_id = ? OR p.user_id = ?
		 ORDER BY d.created_at`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing diagrams: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning diagram id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	diagrams := make([]diagram.Diagram, 0, len(ids))
	for _, id := range ids {
		d, err := s.GetDiagram(ctx, id)
		if err != nil {
			return nil, err
		}
		diagrams = append(diagrams, d)
	}
	return diagrams, nil
}

// RenameDiagram updates the diagram's name and advances updated_at.
func (s *Store) RenameDiagram(ctx context.Context, id, name string) (diagram.Diagram, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE diagrams SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id,
	)
	if err != nil {
		return diagram.Diagram{}, fmt.Errorf("renaming diagram: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return diagram.Diagram{}, ErrNotFound
	}
	return s.GetDiagram(ctx, id)
}

// DeleteDiagram removes a diagram. Only the owner may delete; deleting an
// unknown id is an error, not a no-op.
func (s *Store) DeleteDiagram(ctx context.Context, id, requesterID string) error {
	var ownerID string
	err := s.db.QueryRowContext(ctx,
		`SELECT owner_id FROM diagrams WHERE id = ?`, id,
	).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up diagram: %w", err)
	}
	if ownerID != requesterID {
		return ErrForbidden
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM diagrams WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting diagram: %w", err)
	}
	return nil
}

// AddParticipant shares the diagram with the user behind email. Sharing
// with the owner or an existing participant is rejected.
func (s *Store) AddParticipant(ctx context.Context, diagramID, email string) (diagram.Diagram, error) {
	d, err := s.GetDiagram(ctx, diagramID)
	if err != nil {
		return diagram.Diagram{}, err
	}
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return diagram.Diagram{}, err
	}
	if d.HasParticipant(u.ID) {
		return diagram.Diagram{}, ErrConflict
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO diagram_participants (diagram_id, user_id) VALUES (?, ?)`,
		diagramID, u.ID,
	)
	if err != nil {
		return diagram.Diagram{}, fmt.Errorf("adding participant: %w", err)
	}
	if err := s.touch(ctx, diagramID); err != nil {
		return diagram.Diagram{}, err
	}
	return s.GetDiagram(ctx, diagramID)
}

// RemoveParticipant revokes userID's access to the diagram.
func (s *Store) RemoveParticipant(ctx context.Context, diagramID, userID string) (diagram.Diagram, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM diagram_participants WHERE diagram_id = ? AND user_id = ?`,
		diagramID, userID,
	)
	if err != nil {
		return diagram.Diagram{}, fmt.Errorf("removing participant: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return diagram.Diagram{}, ErrNotFound
	}
	if err := s.touch(ctx, diagramID); err != nil {
		return diagram.Diagram{}, err
	}
	return s.GetDiagram(ctx, diagramID)
}

func (s *Store) listParticipants(ctx context.Context, diagramID string) ([]diagram.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.first_name, u.last_name, u.email
		 FROM diagram_participants p JOIN users u ON u.id = p.user_id
		 WHERE p.diagram_id = ?
		 ORDER BY u.email`, diagramID)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	defer rows.Close()

	var out []diagram.Participant
	for rows.Next() {
		var p diagram.Participant
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email); err != nil {
			return nil, fmt.Errorf("scanning participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// touch advances a diagram's updated_at after a participant-list change.
func (s *Store) touch(ctx context.Context, diagramID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE diagrams SET updated_at = ? WHERE id = ?`,
		time.Now().UTC(), diagramID,
	)
	if err != nil {
		return fmt.Errorf("touching diagram: %w", err)
	}
	return nil
}
