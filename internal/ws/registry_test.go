package ws

import (
	"fmt"
	"sync"
	"testing"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeHandle struct {
	id string

	mu     sync.Mutex
	events []Event
	closed bool
	fail   bool
}

func newFakeHandle(id string) *fakeHandle {
	return &fakeHandle{id: id}
}

func (f *fakeHandle) ID() string { return f.id }

func (f *fakeHandle) Push(ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return apperrors.ErrConnectionClosed
	}
	if f.fail {
		return apperrors.ErrDeliveryBestEffort
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeHandle) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeHandle) Events() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.events...)
}

func (f *fakeHandle) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestRegistry_Register_Then_Lookup(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(zap.NewNop())
	h := newFakeHandle("h1")

	reg.Register("u1", "alice", h)

	got, ok := reg.Lookup("u1")
	req.True(ok)
	req.Same(h, got)
	name, ok := reg.Username("u1")
	req.True(ok)
	req.Equal("alice", name)

	reg.Unregister("u1")
	_, ok = reg.Lookup("u1")
	req.False(ok)
}

func TestRegistry_Second_Register_Replaces_Handle(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(zap.NewNop())
	watcher := newFakeHandle("w")
	reg.Register("u9", "watcher", watcher)
	h1, h2 := newFakeHandle("h1"), newFakeHandle("h2")

	// Given u1 connected once
	reg.Register("u1", "alice", h1)
	// When u1 reconnects
	reg.Register("u1", "alice", h2)

	// Then the latest handle wins and the stale one is closed
	got, ok := reg.Lookup("u1")
	req.True(ok)
	req.Same(h2, got)
	req.True(h1.IsClosed())
	req.Equal([]string{"u1", "u9"}, reg.ListOnline())

	// And the reconnect is not announced twice
	online := 0
	for _, ev := range watcher.Events() {
		if ev.Type == EventUserOnline {
			online++
		}
	}
	req.Equal(1, online)
}

func TestRegistry_Release_Ignores_Stale_Handle(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(zap.NewNop())
	h1, h2 := newFakeHandle("h1"), newFakeHandle("h2")
	reg.Register("u1", "alice", h1)
	reg.Register("u1", "alice", h2)

	// The replaced connection finishing its lifecycle must not evict h2
	req.False(reg.Release("u1", h1))
	req.True(reg.IsOnline("u1"))

	req.True(reg.Release("u1", h2))
	req.False(reg.IsOnline("u1"))
}

func TestRegistry_Broadcasts_Presence_To_Others(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(zap.NewNop())
	a, b := newFakeHandle("a"), newFakeHandle("b")

	reg.Register("u1", "alice", a)
	reg.Register("u2", "bob", b)
	reg.Unregister("u2")

	events := a.Events()
	req.Len(events, 2)
	req.Equal(EventUserOnline, events[0].Type)
	req.Equal(UserPresence{UserID: "u2"}, events[0].Data)
	req.Equal(EventUserOffline, events[1].Type)

	// Nobody is told about themselves
	req.Empty(b.Events())
}

// observingHandle reads the registry from inside Push, the way a connection
// reacting to presence would.
type observingHandle struct {
	*fakeHandle
	reg      *Registry
	watch    string
	sawState []bool
}

func (o *observingHandle) Push(ev Event) error {
	o.sawState = append(o.sawState, o.reg.IsOnline(o.watch))
	return o.fakeHandle.Push(ev)
}

func TestRegistry_Release_Removes_Entry_Before_Announcing(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(zap.NewNop())
	watcher := &observingHandle{fakeHandle: newFakeHandle("a"), reg: reg, watch: "u2"}
	b := newFakeHandle("b")
	reg.Register("u1", "alice", watcher)
	reg.Register("u2", "bob", b)

	// When bob's connection is released
	req.True(reg.Release("u2", b))

	// Then alice is told while bob is already gone, and no lock is held
	// during the push
	events := watcher.Events()
	req.Len(events, 2)
	req.Equal(EventUserOffline, events[1].Type)
	req.Equal([]bool{true, false}, watcher.sawState)
	req.Equal([]string{"u1"}, reg.ListOnline())
}

func TestRegistry_Broadcast_Failure_Does_Not_Fail_Register(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(zap.NewNop())
	broken := newFakeHandle("broken")
	broken.fail = true
	reg.Register("u1", "alice", broken)

	reg.Register("u2", "bob", newFakeHandle("b"))

	req.True(reg.IsOnline("u2"))
}

func TestRegistry_Push(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(zap.NewNop())
	h := newFakeHandle("h")
	reg.Register("u1", "alice", h)

	req.NoError(reg.Push("u1", NewEvent(EventUserTyping, UserTyping{UserID: "u2", IsTyping: true})))
	req.ErrorIs(reg.Push("u2", NewEvent(EventUserTyping, nil)), ErrOffline)
	req.Len(h.Events(), 1)
}

func TestRegistry_Concurrent_Access(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", i%10)
			h := newFakeHandle(fmt.Sprintf("h%d", i))
			reg.Register(userID, userID, h)
			_, _ = reg.Lookup(userID)
			_ = reg.ListOnline()
			_ = reg.Push(userID, NewEvent(EventUserTyping, nil))
			reg.Release(userID, h)
		}(i)
	}
	wg.Wait()

	// Each goroutine released its own handle unless it had been replaced,
	// and the replacing goroutine released that one.
	req.Empty(reg.ListOnline())
}
