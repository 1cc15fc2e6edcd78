package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nkaroui/soapdir/internal/domain"
	"github.com/nkaroui/soapdir/internal/repository"
)

// Store is an in-memory implementation of the repository interfaces backed by
// maps. It is safe for concurrent use and intended for tests and development.
// Listings come back in insertion order.
type Store struct {
	mu        sync.Mutex
	users     map[string]domain.User
	posts     map[string]domain.Post
	userOrder []string
	postOrder []string
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		users: make(map[string]domain.User),
		posts: make(map[string]domain.Post),
	}
}

var (
	_ repository.UserRepository = (*Store)(nil)
	_ repository.PostRepository = (*Store)(nil)
)

// CreateUser assigns an identifier and stores a copy of the user.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = uuid.NewString()
	s.users[user.ID] = *user
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

// GetUserByID returns a copy of the user or ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// ListUsers returns every user in insertion order.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]domain.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		users = append(users, s.users[id])
	}
	return users, nil
}

// UpdateUser merges non-empty patch fields into the stored record.
func (s *Store) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.FullName != "" {
		u.FullName = patch.FullName
	}
	if patch.Email != "" {
		u.Email = patch.Email
	}
	if patch.PhoneNumber != "" {
		u.PhoneNumber = patch.PhoneNumber
	}
	s.users[id] = u
	return &u, nil
}

// DeleteUser removes the user and returns its final snapshot.
func (s *Store) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(s.users, id)
	s.userOrder = removeID(s.userOrder, id)
	return &u, nil
}

// CreatePost assigns an identifier and stores a copy of the post.
func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = uuid.NewString()
	s.posts[post.ID] = *post
	s.postOrder = append(s.postOrder, post.ID)
	return nil
}

// GetPostByID returns a copy of the post or ErrNotFound.
func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// ListPosts returns posts matching the filter in insertion order.
func (s *Store) ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := make([]domain.Post, 0, len(s.postOrder))
	for _, id := range s.postOrder {
		p := s.posts[id]
		if filter.UserID != "" && p.UserID != filter.UserID {
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// DeletePost removes the post and returns its final snapshot.
func (s *Store) DeletePost(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(s.posts, id)
	s.postOrder = removeID(s.postOrder, id)
	return &p, nil
}

func removeID(order []string, id string) []string {
	for i, existing := range order {
		if existing == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
