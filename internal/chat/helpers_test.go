package chat

import (
	"sync"
	"testing"
	"time"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/models"
	"github.com/Vasu1712/socialsync-backend/internal/storage"
	"github.com/Vasu1712/socialsync-backend/internal/storage/memory"
	"github.com/Vasu1712/socialsync-backend/internal/ws"
	"go.uber.org/zap"
)

type fakeConn struct {
	id string

	mu     sync.Mutex
	events []ws.Event
	fail   bool
	closed bool
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Push(ev ws.Event) error {
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

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) OfType(eventType string) []ws.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ws.Event
	for _, ev := range f.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	registry      *ws.Registry
	messages      *memory.MessageStore
	notifications *memory.NotificationStore
	users         *memory.UserDirectory
	lastSeen      *memory.LastSeenStore
	svc           *Service
}

var (
	alice = models.UserRef{ID: "u1", Username: "alice", DisplayName: "Alice"}
	bob   = models.UserRef{ID: "u2", Username: "bob"}
	carol = models.UserRef{ID: "u3", Username: "carol"}
)

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		at = at.Add(time.Second)
		return at
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		registry:      ws.NewRegistry(zap.NewNop()),
		messages:      memory.NewMessageStore(),
		notifications: memory.NewNotificationStore(),
		users:         memory.NewUserDirectory(alice, bob, carol),
		lastSeen:      memory.NewLastSeenStore(),
	}
	f.svc = f.service(f.messages, f.notifications)
	return f
}

// service builds a Service over the fixture's registry and directory with
// the given stores, so tests can swap in mocks.
func (f *fixture) service(messages storage.MessageStore, notifications storage.NotificationStore) *Service {
	notifier := NewNotifier(notifications, f.users, f.registry, zap.NewNop())
	return NewService(messages, f.users, f.lastSeen, f.registry, notifier, zap.NewNop(), WithClock(steppingClock()))
}

func (f *fixture) connect(user models.UserRef) *fakeConn {
	conn := &fakeConn{id: "conn-" + user.ID}
	f.svc.Connect(user.ID, user.Username, conn)
	return conn
}
