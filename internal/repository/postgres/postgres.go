package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkaroui/soapdir/internal/domain"
	"github.com/nkaroui/soapdir/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL. Identifiers are
// stored as TEXT so a malformed id simply matches no row.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository = (*Repository)(nil)
	_ repository.PostRepository = (*Repository)(nil)
)

// CreateUser inserts a user under a freshly assigned identifier.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	const query = `INSERT INTO users (id, full_name, email, phone_number)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.FullName, user.Email, user.PhoneNumber)
	return err
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, full_name, email, phone_number FROM users WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PhoneNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every user in store order.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT id, full_name, email, phone_number FROM users`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.PhoneNumber); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser merges the non-empty patch fields into the stored record in a
// single statement and returns the updated record.
func (r *Repository) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	const query = `UPDATE users SET
			full_name = COALESCE(NULLIF($2, ''), full_name),
			email = COALESCE(NULLIF($3, ''), email),
			phone_number = COALESCE(NULLIF($4, ''), phone_number)
		WHERE id = $1
		RETURNING id, full_name, email, phone_number`
	row := r.pool.QueryRow(ctx, query, id, patch.FullName, patch.Email, patch.PhoneNumber)
	var u domain.User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PhoneNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes a user and returns the deleted snapshot.
func (r *Repository) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	const query = `DELETE FROM users WHERE id = $1
		RETURNING id, full_name, email, phone_number`
	row := r.pool.QueryRow(ctx, query, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PhoneNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreatePost inserts a post under a freshly assigned identifier. The user
// reference is persisted as supplied; existence is not checked.
func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) error {
	post.ID = uuid.NewString()
	const query = `INSERT INTO posts (id, content, user_id, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, post.ID, post.Content, post.UserID, post.CreatedAt)
	return err
}

// GetPostByID retrieves a post by identifier.
func (r *Repository) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	const query = `SELECT id, content, user_id, created_at FROM posts WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	var p domain.Post
	if err := row.Scan(&p.ID, &p.Content, &p.UserID, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPosts returns posts matching the filter in store order. An empty filter
// matches every post.
func (r *Repository) ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	query := `SELECT id, content, user_id, created_at FROM posts`
	args := []any{}
	if filter.UserID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, filter.UserID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.UserID, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// DeletePost removes a post and returns the deleted snapshot.
func (r *Repository) DeletePost(ctx context.Context, id string) (*domain.Post, error) {
	const query = `DELETE FROM posts WHERE id = $1
		RETURNING id, content, user_id, created_at`
	row := r.pool.QueryRow(ctx, query, id)
	var p domain.Post
	if err := row.Scan(&p.ID, &p.Content, &p.UserID, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
