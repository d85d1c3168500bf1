// Package notify holds the in-process notification feed. A Store keeps the
// notifications and fans every mutation out to its subscribers synchronously;
// the websocket hub is one such subscriber.
package notify

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no notification has the given ID.
var ErrNotFound = errors.New("notification not found")

// Type classifies a notification.
type Type string

const (
	TypeApplication Type = "application"
	TypeInterview   Type = "interview"
	TypeJob         Type = "job"
	TypePlacement   Type = "placement"
	TypeCertificate Type = "certificate"
	TypeSystem      Type = "system"
)

// Notification is a single feed entry. A zero UserID and empty Role make it
// visible to everyone. Entries with a zero UserID are shared: read and
// dismissed state for them is tracked per user, not on the entry.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	UserID    int64     `json:"userId,omitempty"`
	Role      string    `json:"role,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Audience identifies who is looking at the feed. The zero Audience sees
// every notification.
type Audience struct {
	UserID int64
	Role   string
}

// Everyone is the unscoped audience.
var Everyone = Audience{}

func (a Audience) all() bool { return a.UserID == 0 && a.Role == "" }

// Shared reports whether n is addressed to a role or to everyone rather than
// to one user.
func (n Notification) Shared() bool { return n.UserID == 0 }

// VisibleTo reports whether n should be shown to a.
func (n Notification) VisibleTo(a Audience) bool {
	if a.all() {
		return true
	}
	if n.UserID != 0 && n.UserID != a.UserID {
		return false
	}
	if n.Role != "" && n.Role != a.Role {
		return false
	}
	return true
}

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventRead    EventKind = "read"
	EventAllRead EventKind = "all_read"
	EventDeleted EventKind = "deleted"
)

// Event is delivered to subscribers after every mutation.
type Event struct {
	Kind         EventKind     `json:"kind"`
	Notification *Notification `json:"notification,omitempty"`
	// Audience scopes the event to one viewer. It is set for EventAllRead
	// and for per-user changes to shared notifications.
	Audience Audience `json:"-"`
}

// Listener receives events. It runs on the goroutine that mutated the store
// and must not block.
type Listener func(Event)

// DefaultCapacity bounds how many notifications a store retains.
const DefaultCapacity = 500

// Store is a concurrency-safe notification feed.
type Store struct {
	mu        sync.RWMutex
	items     []Notification
	capacity  int
	listeners map[uint64]Listener
	nextSub   uint64
	now       func() time.Time

	// per-user state of shared notifications, keyed by notification ID
	readBy     map[string]map[int64]struct{}
	hiddenFrom map[string]map[int64]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity sets the retention bound; the oldest entries are evicted first.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		capacity:   DefaultCapacity,
		listeners:  make(map[uint64]Listener),
		now:        time.Now,
		readBy:     make(map[string]map[int64]struct{}),
		hiddenFrom: make(map[string]map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add stores n, filling in ID and CreatedAt when missing, and returns the
// stored copy.
func (s *Store) Add(n Notification) Notification {
	s.mu.Lock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	n.Read = false
	s.items = append(s.items, n)
	if over := len(s.items) - s.capacity; over > 0 {
		for _, old := range s.items[:over] {
			s.forget(old.ID)
		}
		s.items = append([]Notification(nil), s.items[over:]...)
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	stored := n
	emit(listeners, Event{Kind: EventAdded, Notification: &stored})
	return n
}

// List returns the notifications visible to a, newest first.
func (s *Store) List(a Audience) []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, 0, len(s.items))
	for _, n := range s.items {
		if v, ok := s.viewFor(n, a); ok {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get returns the notification with the given ID.
func (s *Store) Get(id string) (Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return Notification{}, ErrNotFound
}

// MarkAsRead flags one notification as read for every viewer.
func (s *Store) MarkAsRead(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.items[i].Read = true
	n := s.items[i]
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	emit(listeners, Event{Kind: EventRead, Notification: &n})
	return nil
}

// MarkAllAsRead flags every notification visible to a as read and returns how
// many changed.
func (s *Store) MarkAllAsRead(a Audience) int {
	s.mu.Lock()
	changed := 0
	for i := range s.items {
		n := &s.items[i]
		v, ok := s.viewFor(*n, a)
		if !ok || v.Read {
			continue
		}
		if n.Shared() && a.UserID != 0 {
			mark(s.readBy, n.ID, a.UserID)
		} else {
			n.Read = true
		}
		changed++
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	emit(listeners, Event{Kind: EventAllRead, Audience: a})
	return changed
}

// Delete removes one notification.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	n := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.forget(id)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	emit(listeners, Event{Kind: EventDeleted, Notification: &n})
	return nil
}

// UnreadCount returns how many notifications visible to a are unread.
func (s *Store) UnreadCount(a Audience) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.items {
		if v, ok := s.viewFor(n, a); ok && !v.Read {
			count++
		}
	}
	return count
}

// MarkReadFor flags a shared notification as read for a.UserID only.
// Non-shared notifications are flagged as with MarkAsRead.
func (s *Store) MarkReadFor(a Audience, id string) error {
	return s.perUser(a, id, s.readBy, EventRead, func(n *Notification) { n.Read = true })
}

// Hide removes a shared notification from a.UserID's feed only.
// Non-shared notifications are deleted.
func (s *Store) Hide(a Audience, id string) error {
	err := s.perUser(a, id, s.hiddenFrom, EventDeleted, nil)
	if errors.Is(err, errNotShared) {
		return s.Delete(id)
	}
	return err
}

var errNotShared = errors.New("notification is not shared")

func (s *Store) perUser(a Audience, id string, state map[string]map[int64]struct{}, kind EventKind, direct func(*Notification)) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	n := &s.items[i]
	if !n.Shared() || a.UserID == 0 {
		if direct == nil {
			s.mu.Unlock()
			return errNotShared
		}
		direct(n)
		a = Everyone
	} else {
		mark(state, id, a.UserID)
	}
	view, _ := s.viewFor(*n, a)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	emit(listeners, Event{Kind: kind, Notification: &view, Audience: a})
	return nil
}

// viewFor returns n as a sees it. It must be called with mu held.
func (s *Store) viewFor(n Notification, a Audience) (Notification, bool) {
	if !n.VisibleTo(a) {
		return n, false
	}
	if !n.Shared() || a.UserID == 0 {
		return n, true
	}
	if has(s.hiddenFrom, n.ID, a.UserID) {
		return n, false
	}
	if has(s.readBy, n.ID, a.UserID) {
		n.Read = true
	}
	return n, true
}

func (s *Store) forget(id string) {
	delete(s.readBy, id)
	delete(s.hiddenFrom, id)
}

func mark(state map[string]map[int64]struct{}, id string, userID int64) {
	users, ok := state[id]
	if !ok {
		users = make(map[int64]struct{})
		state[id] = users
	}
	users[userID] = struct{}{}
}

func has(state map[string]map[int64]struct{}, id string, userID int64) bool {
	_, ok := state[id][userID]
	return ok
}

// Subscribe registers l and returns a function that removes it. The returned
// function is safe to call more than once.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Subscribers returns the number of registered listeners.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshotListeners must be called with mu held. Listeners are invoked in
// subscription order.
func (s *Store) snapshotListeners() []Listener {
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

func emit(listeners []Listener, ev Event) {
	for _, l := range listeners {
		l(ev)
	}
}
