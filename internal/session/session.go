// Package session carries the contract with the external identity service:
// a snapshot of the current actor plus push notifications for login and
// logout transitions. Consumers receive an explicit Provider instead of
// reading ambient process-wide state.
package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/maestro-api/internal/models"
)

// Actor is the immutable snapshot of a signed-in participant.
type Actor struct {
	ID       uint             `json:"id"`
	Role     models.ActorRole `json:"role"`
	IsMaster bool             `json:"is_master"`
}

// EventKind distinguishes session transitions.
type EventKind string

// Session transitions announced by the identity service.
const (
	EventLogin  EventKind = "login"
	EventLogout EventKind = "logout"
)

// Event describes a single session transition. Actor is nil for logouts.
type Event struct {
	Kind  EventKind `json:"kind"`
	Actor *Actor    `json:"actor,omitempty"`
	At    time.Time `json:"at"`
}

// Provider resolves the current actor and announces session transitions.
// CurrentActor returns resolved=false while the initial resolution is still
// in flight, which the access gate surfaces as the Loading state.
type Provider interface {
	CurrentActor() (actor *Actor, resolved bool)
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Broadcaster is an in-process Provider fed by the external identity
// service, either directly through Login/Logout or via a NATS bridge.
type Broadcaster struct {
	mu       sync.RWMutex
	subs     map[uint64]func(Event)
	nextID   uint64
	current  *Actor
	resolved bool
	logger   zerolog.Logger
}

// NewBroadcaster constructs an unresolved broadcaster; callers mark it
// resolved with the first Login or Logout.
func NewBroadcaster(logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		subs:   make(map[uint64]func(Event)),
		logger: logger.With().Str("component", "session_broadcaster").Logger(),
	}
}

// CurrentActor returns the latest session snapshot.
func (b *Broadcaster) CurrentActor() (*Actor, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.current == nil {
		return nil, b.resolved
	}
	snapshot := *b.current
	return &snapshot, b.resolved
}

// Subscribe registers a callback for session transitions and returns the
// matching unsubscribe function.
func (b *Broadcaster) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Login records a signed-in actor and notifies subscribers.
func (b *Broadcaster) Login(actor Actor) {
	b.mu.Lock()
	snapshot := actor
	b.current = &snapshot
	b.resolved = true
	b.mu.Unlock()

	b.broadcast(Event{Kind: EventLogin, Actor: &snapshot, At: time.Now().UTC()})
}

// Logout clears the session and notifies subscribers.
func (b *Broadcaster) Logout() {
	b.mu.Lock()
	b.current = nil
	b.resolved = true
	b.mu.Unlock()

	b.broadcast(Event{Kind: EventLogout, At: time.Now().UTC()})
}

func (b *Broadcaster) broadcast(event Event) {
	b.mu.RLock()
	callbacks := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		callbacks = append(callbacks, fn)
	}
	b.mu.RUnlock()

	for _, fn := range callbacks {
		fn(event)
	}
}
