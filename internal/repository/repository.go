package repository

import (
	"context"

	"github.com/nkaroui/soapdir/internal/domain"
)

// UserRepository persists users. Implementations must be safe for concurrent
// use; concurrent writes to the same identifier resolve last-write-wins.
type UserRepository interface {
	// CreateUser assigns a fresh identifier to the user and persists it.
	CreateUser(ctx context.Context, user *domain.User) error
	// GetUserByID returns ErrNotFound when no record exists for id.
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	// ListUsers returns every user in store order. No ordering guarantee.
	ListUsers(ctx context.Context) ([]domain.User, error)
	// UpdateUser merges the non-empty patch fields into the stored record and
	// returns the updated record, or ErrNotFound when no record exists.
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	// DeleteUser removes the record and returns its final snapshot, or
	// ErrNotFound when no record exists.
	DeleteUser(ctx context.Context, id string) (*domain.User, error)
}

// PostRepository persists posts.
type PostRepository interface {
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPostByID(ctx context.Context, id string) (*domain.Post, error)
	ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error)
	DeletePost(ctx context.Context, id string) (*domain.Post, error)
}
