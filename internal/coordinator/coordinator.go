// Package coordinator orchestrates the diagram synchronization layer. It
// is the only component that mutates the store: it issues gateway calls,
// applies authoritative results, and reconciles push updates from the
// event channel. UI-layer callers express intents through its operations
// and render from the store.
package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/lgmendez/diasync/internal/channel"
	"github.com/lgmendez/diasync/internal/diagram"
	"github.com/lgmendez/diasync/internal/gateway"
	"github.com/lgmendez/diasync/internal/session"
	"github.com/lgmendez/diasync/internal/store"
)

// Gateway is the REST backend contract the coordinator consumes. The
// concrete implementation lives in internal/gateway; tests inject fakes.
type Gateway interface {
	ListByUser(ctx context.Context, userID string) ([]diagram.Diagram, error)
	Create(ctx context.Context, name, ownerID string) (diagram.Diagram, error)
	Update(ctx context.Context, id string, patch diagram.UpdatePatch) (diagram.Diagram, error)
	Remove(ctx context.Context, id, requesterID string) error
	AddParticipant(ctx context.Context, diagramID, email string) (diagram.Diagram, error)
	RemoveParticipant(ctx context.Context, diagramID, userID string) (diagram.Diagram, error)
}

// EventChannel is the push-update contract. The concrete implementation is
// internal/channel's websocket client.
type EventChannel interface {
	Join(diagramID string) error
	Leave(diagramID string) error
	OnUpdate(h channel.UpdateHandler)
	EmitChange(diagramID string, change any) error
}

// ErrNoAuthenticatedUser is returned by operations that need an identity
// when the session carries none. The gateway is never called in that case.
var ErrNoAuthenticatedUser = errors.New("no authenticated user")

// OpInProgressError rejects a mutating operation issued for a diagram that
// already has one in flight, so e.g. a double-fired delete never issues a
// second DELETE.
type OpInProgressError struct {
	ID string
}

func (e *OpInProgressError) Error() string {
	return fmt.Sprintf("operation already in progress for %s", e.ID)
}

// Coordinator drives all diagram state transitions. Mutating operations
// are serialized; pushes are reconciled out-of-band without touching the
// loading or error flags.
type Coordinator struct {
	gw    Gateway
	ch    EventChannel
	store *store.Store
	user  session.User

	onUnauthorized func()

	opMu sync.Mutex // serializes logical operations against the gateway

	targetMu sync.Mutex
	inFlight map[string]bool

	watchMu  sync.Mutex
	watching string

	closed atomic.Bool
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithChannel attaches an event channel; push updates from it are
// reconciled into the store.
func WithChannel(ch EventChannel) Option {
	return func(c *Coordinator) { c.ch = ch }
}

// WithUnauthorizedHandler registers the out-of-core session-teardown hook,
// invoked once per operation that fails with an unauthorized error.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Coordinator) { c.onUnauthorized = fn }
}

// New creates a coordinator writing to st on behalf of user. If an event
// channel is attached, the push reconciliation handler is registered
// immediately.
func New(gw Gateway, st *store.Store, user session.User, opts ...Option) *Coordinator {
	c := &Coordinator{
		gw:       gw,
		store:    st,
		user:     user,
		inFlight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ch != nil {
		c.ch.OnUpdate(c.handlePush)
	}
	return c
}

// Refresh replaces the store's collection with the backend's authoritative
// list for the current user. The loading flag is cleared on success and
// failure alike.
func (c *Coordinator) Refresh(ctx context.Context) error {
	if !c.user.Valid() {
		c.store.SetError(ErrNoAuthenticatedUser.Error())
		return ErrNoAuthenticatedUser
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	diagrams, err := c.gw.ListByUser(ctx, c.user.ID)
	if err != nil {
		return c.fail(err)
	}

	me := c.user.Participant()
	normalized := make([]diagram.Diagram, 0, len(diagrams))
	for _, d := range diagrams {
		normalized = append(normalized, diagram.Normalize(d, me))
	}
	c.store.SetAll(normalized)
	c.store.SetError("")
	return nil
}

// Create makes a new diagram owned by the current user. The name is
// validated client-side first; an invalid name is rejected without any
// network call.
func (c *Coordinator) Create(ctx context.Context, name string) (diagram.Diagram, error) {
	if !c.user.Valid() {
		c.store.SetError(ErrNoAuthenticatedUser.Error())
		return diagram.Diagram{}, ErrNoAuthenticatedUser
	}
	if err := diagram.ValidateName(name); err != nil {
		return diagram.Diagram{}, validationError(err)
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	created, err := c.gw.Create(ctx, name, c.user.ID)
	if err != nil {
		return diagram.Diagram{}, c.fail(err)
	}

	normalized := diagram.Normalize(created, c.user.Participant())
	c.store.Upsert(normalized)
	c.store.SetError("")
	return normalized, nil
}

// Remove deletes the diagram. A second Remove for an id that is still in
// flight is rejected with *OpInProgressError instead of issuing a
// duplicate DELETE.
func (c *Coordinator) Remove(ctx context.Context, id string) error {
	if !c.user.Valid() {
		c.store.SetError(ErrNoAuthenticatedUser.Error())
		return ErrNoAuthenticatedUser
	}
	if err := c.beginTarget(id); err != nil {
		return err
	}
	defer c.endTarget(id)

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	if err := c.gw.Remove(ctx, id, c.user.ID); err != nil {
		return c.fail(err)
	}
	c.store.Remove(id)
	c.store.SetError("")
	return nil
}

// Update renames the diagram and then shares it with each email in
// addEmails, sequentially to preserve the server-side ordering of
// participant-list mutations. The first failure aborts the remaining
// steps; already-applied steps are not rolled back and the returned error
// names the step that failed so the caller can surface the partial
// completion.
func (c *Coordinator) Update(ctx context.Context, id, name string, addEmails []string) (diagram.Diagram, error) {
	if !c.user.Valid() {
		c.store.SetError(ErrNoAuthenticatedUser.Error())
		return diagram.Diagram{}, ErrNoAuthenticatedUser
	}
	if err := diagram.ValidateName(name); err != nil {
		return diagram.Diagram{}, validationError(err)
	}
	if err := c.beginTarget(id); err != nil {
		return diagram.Diagram{}, err
	}
	defer c.endTarget(id)

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	me := c.user.Participant()

	updated, err := c.gw.Update(ctx, id, diagram.UpdatePatch{Name: &name})
	if err != nil {
		return diagram.Diagram{}, c.fail(fmt.Errorf("renaming diagram: %w", err))
	}
	current := diagram.Normalize(updated, me)
	c.store.Upsert(current)

	for _, email := range addEmails {
		shared, err := c.gw.AddParticipant(ctx, id, email)
		if err != nil {
			return current, c.fail(fmt.Errorf("adding participant %s: %w", email, err))
		}
		current = diagram.Normalize(shared, me)
		c.store.Upsert(current)
	}

	c.store.SetError("")
	return current, nil
}

// RemoveParticipant revokes a participant's access and applies the
// backend's updated participant list.
func (c *Coordinator) RemoveParticipant(ctx context.Context, diagramID, userID string) (diagram.Diagram, error) {
	if !c.user.Valid() {
		c.store.SetError(ErrNoAuthenticatedUser.Error())
		return diagram.Diagram{}, ErrNoAuthenticatedUser
	}
	if err := c.beginTarget(diagramID); err != nil {
		return diagram.Diagram{}, err
	}
	defer c.endTarget(diagramID)

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	updated, err := c.gw.RemoveParticipant(ctx, diagramID, userID)
	if err != nil {
		return diagram.Diagram{}, c.fail(err)
	}
	normalized := diagram.Normalize(updated, c.user.Participant())
	c.store.Upsert(normalized)
	c.store.SetError("")
	return normalized, nil
}

// Select marks a diagram as the one being viewed. It reports false when
// the id is unknown to the store.
func (c *Coordinator) Select(id string) bool {
	return c.store.SetSelected(id)
}

// Watch joins the diagram's push room. The channel leaves any previously
// joined room first, so watching a new diagram never leaks the old
// subscription. Without an attached channel Watch is a no-op.
func (c *Coordinator) Watch(diagramID string) error {
	if c.ch == nil {
		return nil
	}
	c.watchMu.Lock()
	c.watching = diagramID
	c.watchMu.Unlock()
	return c.ch.Join(diagramID)
}

// Unwatch leaves the currently watched room, if any.
func (c *Coordinator) Unwatch() error {
	if c.ch == nil {
		return nil
	}
	c.watchMu.Lock()
	id := c.watching
	c.watching = ""
	c.watchMu.Unlock()
	if id == "" {
		return nil
	}
	return c.ch.Leave(id)
}

// EmitChange fires a best-effort local-edit notification for the diagram.
// Failures are logged, not retried.
func (c *Coordinator) EmitChange(diagramID string, change any) {
	if c.ch == nil {
		return
	}
	if err := c.ch.EmitChange(diagramID, change); err != nil {
		log.Printf("coordinator: emit change for %s: %v", diagramID, err)
	}
}

// Close detaches the push handler and leaves the watched room. Pushes
// arriving after Close are dropped rather than applied to the store.
func (c *Coordinator) Close() error {
	c.closed.Store(true)
	if c.ch == nil {
		return nil
	}
	c.ch.OnUpdate(nil)
	return c.Unwatch()
}

// handlePush reconciles one push update into the store. It is out-of-band
// with respect to user-initiated operations: it never touches the loading
// or error flags, and stale payloads die on the store's write-skew guard.
func (c *Coordinator) handlePush(raw json.RawMessage) {
	if c.closed.Load() {
		return
	}
	var d diagram.Diagram
	if err := json.Unmarshal(raw, &d); err != nil {
		log.Printf("coordinator: dropping malformed push: %v", err)
		return
	}
	if d.ID == "" {
		return
	}
	c.store.Upsert(diagram.Normalize(d, c.user.Participant()))
}

// beginTarget claims the per-diagram in-flight slot. It is taken before
// the operation mutex so a concurrent duplicate is rejected immediately
// instead of queueing behind the first.
func (c *Coordinator) beginTarget(id string) error {
	c.targetMu.Lock()
	defer c.targetMu.Unlock()
	if c.inFlight[id] {
		return &OpInProgressError{ID: id}
	}
	c.inFlight[id] = true
	return nil
}

func (c *Coordinator) endTarget(id string) {
	c.targetMu.Lock()
	delete(c.inFlight, id)
	c.targetMu.Unlock()
}

// fail records the operation's error message in the store and passes the
// classified error back to the caller, which decides presentation. An
// unauthorized failure additionally triggers the session-teardown hook.
func (c *Coordinator) fail(err error) error {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		c.store.SetError(apiErr.UserMessage())
		if apiErr.Kind == gateway.KindUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	} else {
		c.store.SetError(err.Error())
	}
	return err
}

// validationError adapts a client-side validation failure to the gateway's
// taxonomy so callers handle it uniformly with backend 400/422 responses.
func validationError(err error) error {
	return &gateway.APIError{Kind: gateway.KindValidationFailed, Message: err.Error()}
}
