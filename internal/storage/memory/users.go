package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/models"
)

// UserDirectory is a seedable stand-in for the user service.
type UserDirectory struct {
	mu    sync.RWMutex
	users map[string]models.UserRef
}

func NewUserDirectory(users ...models.UserRef) *UserDirectory {
	d := &UserDirectory{users: make(map[string]models.UserRef)}
	for _, u := range users {
		d.Put(u)
	}
	return d
}

func (d *UserDirectory) Put(u models.UserRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *UserDirectory) FindByID(_ context.Context, id string) (*models.UserRef, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (d *UserDirectory) FindByUsername(_ context.Context, username string) (*models.UserRef, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (d *UserDirectory) Search(_ context.Context, query string, limit int) ([]models.UserRef, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []models.UserRef{}, nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	result := []models.UserRef{}
	for _, u := range d.users {
		if strings.Contains(strings.ToLower(u.Username), query) ||
			strings.Contains(strings.ToLower(u.DisplayName), query) {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
