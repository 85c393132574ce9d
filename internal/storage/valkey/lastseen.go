package valkey

import (
	"context"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"
)

const keyPrefix = "lastseen:"

// LastSeenStore keeps each user's last disconnect time as unix milliseconds
// under an expiring key.
type LastSeenStore struct {
	client valkey.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient connects to a single valkey node.
func NewClient(addr string) (valkey.Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey at %s: %w", addr, err)
	}
	return client, nil
}

func NewLastSeenStore(client valkey.Client, ttl time.Duration, logger *zap.Logger) *LastSeenStore {
	return &LastSeenStore{client: client, ttl: ttl, logger: logger}
}

func (s *LastSeenStore) Touch(ctx context.Context, userID string, at time.Time) error {
	cmd := s.client.B().Set().
		Key(keyPrefix + userID).
		Value(strconv.FormatInt(at.UnixMilli(), 10)).
		ExSeconds(int64(s.ttl / time.Second)).
		Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		s.logger.Warn("failed to record last seen", zap.String("user_id", userID), zap.Error(err))
		return apperrors.Persistence("touch last seen", err)
	}
	return nil
}

func (s *LastSeenStore) Get(ctx context.Context, userID string) (time.Time, bool, error) {
	ms, err := s.client.Do(ctx, s.client.B().Get().Key(keyPrefix+userID).Build()).AsInt64()
	if valkey.IsValkeyNil(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, apperrors.Persistence("get last seen", err)
	}
	return time.UnixMilli(ms).UTC(), true, nil
}
