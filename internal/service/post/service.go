package post

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/nkaroui/soapdir/internal/domain"
	"github.com/nkaroui/soapdir/internal/repository"
	"github.com/nkaroui/soapdir/internal/soap"
	"github.com/nkaroui/soapdir/internal/util"
)

// Contract names of the post operation set.
const (
	ServiceName = "PostService"
	PortName    = "PostPort"
)

// Service implements the PostService/PostPort operations.
type Service struct {
	posts  repository.PostRepository
	clock  util.Clock
	logger *slog.Logger
}

// New returns a post service.
func New(posts repository.PostRepository, clock util.Clock, logger *slog.Logger) Service {
	if clock == nil {
		clock = util.NewRealClock()
	}
	return Service{posts: posts, clock: clock, logger: logger}
}

// Entry is the listPosts element payload.
type Entry struct {
	PostID    string    `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// List is the listPosts payload.
type List struct {
	Posts []Entry `json:"posts"`
}

// Ref is the addPost payload.
type Ref struct {
	PostID string `json:"postId"`
}

// Message is the deletePost payload.
type Message struct {
	Message string `json:"message"`
}

// Register binds every post operation into the registry.
func (s Service) Register(reg *soap.Registry) {
	reg.Register(ServiceName, PortName, "addPost", s.handleAddPost)
	reg.Register(ServiceName, PortName, "listPosts", s.handleListPosts)
	reg.Register(ServiceName, PortName, "deletePost", s.handleDeletePost)
}

// AddPost creates a post bound to userID and returns its assigned identifier.
// The referenced user is deliberately not checked for existence; a dangling
// reference is accepted. A zero createdAt defaults to the current time.
func (s Service) AddPost(ctx context.Context, content, userID string, createdAt time.Time) (*Ref, error) {
	if createdAt.IsZero() {
		createdAt = s.clock.NowUtc()
	}
	p := &domain.Post{
		Content:   content,
		UserID:    userID,
		CreatedAt: createdAt,
	}
	if err := s.posts.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("post created", "post_id", p.ID, "user_id", p.UserID)
	return &Ref{PostID: p.ID}, nil
}

// ListPosts returns the posts attributed to userID. No posts is reported as a
// Client fault rather than an empty list, matching the user listing policy.
func (s Service) ListPosts(ctx context.Context, userID string) (*List, error) {
	posts, err := s.posts.ListPosts(ctx, domain.PostFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, soap.ClientFault("No posts found for this user")
	}
	out := &List{Posts: make([]Entry, 0, len(posts))}
	for _, p := range posts {
		out.Posts = append(out.Posts, Entry{
			PostID:    p.ID,
			Content:   p.Content,
			CreatedAt: p.CreatedAt,
		})
	}
	return out, nil
}

// DeletePost removes a post.
func (s Service) DeletePost(ctx context.Context, postID string) (*Message, error) {
	if _, err := s.posts.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, soap.ClientFault("Post not found")
		}
		return nil, err
	}
	s.logger.Info("post deleted", "post_id", postID)
	return &Message{Message: "Post deleted successfully"}, nil
}

func (s Service) handleAddPost(ctx context.Context, args soap.Args) (any, error) {
	var createdAt time.Time
	if raw := args.Get("createdAt"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			createdAt = parsed
		}
	}
	return s.AddPost(ctx, args.Get("content"), args.Get("userId"), createdAt)
}

func (s Service) handleListPosts(ctx context.Context, args soap.Args) (any, error) {
	return s.ListPosts(ctx, args.Get("userId"))
}

func (s Service) handleDeletePost(ctx context.Context, args soap.Args) (any, error) {
	return s.DeletePost(ctx, args.Get("postId"))
}
