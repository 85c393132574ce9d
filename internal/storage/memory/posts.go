package memory

import (
	"context"
	"slices"
	"sync"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/models"
	"github.com/Vasu1712/socialsync-backend/internal/storage"
	"github.com/google/uuid"
)

// PostStore manages the storage and retrieval of Post objects in memory.
type PostStore struct {
	mu    sync.RWMutex
	posts map[string]*models.Post // postID -> post
}

// NewPostStore creates and returns a new instance of PostStore.
func NewPostStore() *PostStore {
	return &PostStore{
		posts: make(map[string]*models.Post),
	}
}

// CreatePost creates a new post for the given author and returns it.
func (s *PostStore) CreatePost(authorID, content string) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := &models.Post{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		Content:  content,
		LikedBy:  []string{},
	}
	s.posts[post.ID] = post
	return post
}

// GetPost retrieves a post by its ID, or nil when it does not exist.
func (s *PostStore) GetPost(postID string) *models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil
	}
	cp := *post
	cp.LikedBy = slices.Clone(post.LikedBy)
	cp.Likes = len(cp.LikedBy)
	return &cp
}

// ToggleLike adds the user to the post's likers, or removes them when they
// already like it. It returns the post author and the resulting like state.
func (s *PostStore) ToggleLike(_ context.Context, postID, userID string) (storage.LikeToggle, error) {
	s.mu.Lock() // Acquire a write lock
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return storage.LikeToggle{}, apperrors.ErrNotFound
	}

	// Unlike when the user is already in the likers list
	if i := slices.Index(post.LikedBy, userID); i >= 0 {
		post.LikedBy = slices.Delete(post.LikedBy, i, i+1)
		return storage.LikeToggle{AuthorID: post.AuthorID, Liked: false, Changed: true}, nil
	}

	post.LikedBy = append(post.LikedBy, userID)
	return storage.LikeToggle{AuthorID: post.AuthorID, Liked: true, Changed: true}, nil
}
