package chat

import (
	"time"

	"github.com/Vasu1712/socialsync-backend/internal/storage"
	"github.com/Vasu1712/socialsync-backend/internal/ws"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxTextLength = 4000
	MaxSearchResults     = 25
	previewLength        = 80
)

// Service is the realtime conversation core: it dispatches messages,
// aggregates conversations and applies read receipts. The message store is
// the single source of truth; the registry only decides who gets a push.
type Service struct {
	messages storage.MessageStore
	users    storage.UserDirectory
	lastSeen storage.LastSeenStore
	registry *ws.Registry
	notifier *Notifier
	logger   *zap.Logger

	maxTextLength int
	now           func() time.Time
	newID         func() string
}

type Option func(*Service)

func WithMaxTextLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTextLength = n
		}
	}
}

// WithClock replaces the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	messages storage.MessageStore,
	users storage.UserDirectory,
	lastSeen storage.LastSeenStore,
	registry *ws.Registry,
	notifier *Notifier,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		messages:      messages,
		users:         users,
		lastSeen:      lastSeen,
		registry:      registry,
		notifier:      notifier,
		logger:        logger.Named("chat"),
		maxTextLength: DefaultMaxTextLength,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         newMessageID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Notifier() *Notifier {
	return s.notifier
}

// newMessageID returns a time-ordered id so that equal timestamps still sort
// in creation order.
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
