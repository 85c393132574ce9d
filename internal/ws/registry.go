package ws

import (
	"errors"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrOffline is returned by Registry.Push when the user holds no connection.
var ErrOffline = errors.New("user is not connected")

// Handle is a live connection the registry can push events to.
type Handle interface {
	ID() string
	// Push enqueues ev without blocking. It fails when the connection is
	// closed or cannot keep up.
	Push(ev Event) error
	Close()
}

type entry struct {
	handle   Handle
	username string
}

// Registry tracks the single active connection of every online user. It is
// the only source for "is this user reachable right now" and starts empty.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry // userID -> current connection
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		entries: make(map[string]entry),
		logger:  logger,
	}
}

// Register makes h the user's connection. A previous connection is closed
// and replaced; only a user who was offline is announced to the others.
func (r *Registry) Register(userID, username string, h Handle) {
	r.mu.Lock()
	prev, existed := r.entries[userID]
	r.entries[userID] = entry{handle: h, username: username}
	r.mu.Unlock()

	if existed {
		if prev.handle != h {
			prev.handle.Close()
		}
		r.logger.Debug("connection replaced",
			zap.String("user_id", userID),
			zap.String("connection_id", h.ID()),
		)
		return
	}

	r.logger.Info("user online", zap.String("user_id", userID), zap.String("connection_id", h.ID()))
	r.broadcast(r.snapshotExcept(userID), NewEvent(EventUserOnline, UserPresence{UserID: userID}))
}

// Unregister removes whatever connection userID holds.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	_, existed := r.entries[userID]
	delete(r.entries, userID)
	r.mu.Unlock()

	if existed {
		r.announceOffline(userID)
	}
}

// Release removes userID only while h is still their connection, so a
// closing stale connection cannot evict its replacement. It reports whether
// the user went offline.
func (r *Registry) Release(userID string, h Handle) bool {
	r.mu.Lock()
	cur, ok := r.entries[userID]
	if !ok || cur.handle != h {
		r.mu.Unlock()
		return false
	}
	delete(r.entries, userID)
	r.mu.Unlock()

	r.announceOffline(userID)
	return true
}

func (r *Registry) Lookup(userID string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[userID]
	return e.handle, ok
}

// Username returns the display name cached at registration.
func (r *Registry) Username(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[userID]
	return e.username, ok
}

func (r *Registry) IsOnline(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// ListOnline returns the ids of all connected users in ascending order.
func (r *Registry) ListOnline() []string {
	r.mu.RLock()
	ids := lo.Keys(r.entries)
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Push sends ev to userID's current connection.
func (r *Registry) Push(userID string, ev Event) error {
	h, ok := r.Lookup(userID)
	if !ok {
		return ErrOffline
	}
	return h.Push(ev)
}

func (r *Registry) announceOffline(userID string) {
	r.logger.Info("user offline", zap.String("user_id", userID))
	r.broadcast(r.snapshotExcept(userID), NewEvent(EventUserOffline, UserPresence{UserID: userID}))
}

// broadcast runs outside the lock; a failed push never fails the caller.
func (r *Registry) broadcast(targets []entry, ev Event) {
	for _, t := range targets {
		if err := t.handle.Push(ev); err != nil {
			r.logger.Debug("broadcast push failed",
				zap.String("type", ev.Type),
				zap.String("connection_id", t.handle.ID()),
				zap.Error(err),
			)
		}
	}
}

// snapshotExcept copies the entries of everyone but userID. Callers must not
// hold the lock; writers only ever touch a single key.
func (r *Registry) snapshotExcept(userID string) []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entry, 0, len(r.entries))
	for id, e := range r.entries {
		if id != userID {
			out = append(out, e)
		}
	}
	return out
}
