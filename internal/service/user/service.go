package user

import (
	"context"
	"errors"

	"log/slog"

	"github.com/nkaroui/soapdir/internal/domain"
	"github.com/nkaroui/soapdir/internal/repository"
	"github.com/nkaroui/soapdir/internal/soap"
)

// Contract names of the user operation set.
const (
	ServiceName = "UserService"
	PortName    = "UserPort"
)

// Service implements the UserService/UserPort operations. It holds no state
// across calls; everything lives in the repository.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// New returns a user service.
func New(users repository.UserRepository, logger *slog.Logger) Service {
	return Service{users: users, logger: logger}
}

// Details is the getUserDetails payload.
type Details struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// Record mirrors a full user entry on the wire.
type Record struct {
	UserID      string `json:"userId"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// List is the listUsers payload.
type List struct {
	Users []Record `json:"users"`
}

// Ref is the addUser payload.
type Ref struct {
	UserID string `json:"userId"`
}

// Message is the deleteUser payload.
type Message struct {
	Message string `json:"message"`
}

// Register binds every user operation into the registry.
func (s Service) Register(reg *soap.Registry) {
	reg.Register(ServiceName, PortName, "getUserDetails", s.handleGetUserDetails)
	reg.Register(ServiceName, PortName, "listUsers", s.handleListUsers)
	reg.Register(ServiceName, PortName, "addUser", s.handleAddUser)
	reg.Register(ServiceName, PortName, "updateUser", s.handleUpdateUser)
	reg.Register(ServiceName, PortName, "deleteUser", s.handleDeleteUser)
}

// GetUserDetails resolves a user and returns its contact fields.
func (s Service) GetUserDetails(ctx context.Context, userID string) (*Details, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, soap.ClientFault("User not found")
		}
		return nil, err
	}
	return &Details{
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}, nil
}

// ListUsers returns every user. An empty directory is reported as a Client
// fault rather than an empty list; that is contract behavior, kept as-is.
func (s Service) ListUsers(ctx context.Context) (*List, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, soap.ClientFault("No users found")
	}
	out := &List{Users: make([]Record, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, Record{
			UserID:      u.ID,
			FullName:    u.FullName,
			Email:       u.Email,
			PhoneNumber: u.PhoneNumber,
		})
	}
	return out, nil
}

// AddUser creates a user and returns its assigned identifier. Required-field
// presence is enforced by the contract layer, not re-checked here.
func (s Service) AddUser(ctx context.Context, fullName, email, phoneNumber string) (*Ref, error) {
	u := &domain.User{
		FullName:    fullName,
		Email:       email,
		PhoneNumber: phoneNumber,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user created", "user_id", u.ID)
	return &Ref{UserID: u.ID}, nil
}

// UpdateUser merges the supplied non-empty fields into an existing user and
// returns the full updated record.
func (s Service) UpdateUser(ctx context.Context, userID string, patch domain.UserPatch) (*Record, error) {
	u, err := s.users.UpdateUser(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, soap.ClientFault("User not found")
		}
		return nil, err
	}
	return &Record{
		UserID:      u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}, nil
}

// DeleteUser removes a user. Posts referencing the user are left in place;
// there is no cascade.
func (s Service) DeleteUser(ctx context.Context, userID string) (*Message, error) {
	if _, err := s.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, soap.ClientFault("User not found")
		}
		return nil, err
	}
	s.logger.Info("user deleted", "user_id", userID)
	return &Message{Message: "User deleted successfully"}, nil
}

func (s Service) handleGetUserDetails(ctx context.Context, args soap.Args) (any, error) {
	return s.GetUserDetails(ctx, args.Get("userId"))
}

func (s Service) handleListUsers(ctx context.Context, args soap.Args) (any, error) {
	return s.ListUsers(ctx)
}

func (s Service) handleAddUser(ctx context.Context, args soap.Args) (any, error) {
	return s.AddUser(ctx, args.Get("fullName"), args.Get("email"), args.Get("phoneNumber"))
}

func (s Service) handleUpdateUser(ctx context.Context, args soap.Args) (any, error) {
	patch := domain.UserPatch{
		FullName:    args.Get("fullName"),
		Email:       args.Get("email"),
		PhoneNumber: args.Get("phoneNumber"),
	}
	return s.UpdateUser(ctx, args.Get("userId"), patch)
}

func (s Service) handleDeleteUser(ctx context.Context, args soap.Args) (any, error) {
	return s.DeleteUser(ctx, args.Get("userId"))
}
