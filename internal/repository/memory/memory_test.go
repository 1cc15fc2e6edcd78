package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nkaroui/soapdir/internal/domain"
	"github.com/nkaroui/soapdir/internal/repository"
)

func TestCreateUserAssignsIDAndRoundTrips(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	u := &domain.User{FullName: "Alice", Email: "a@x.com", PhoneNumber: "555-0100"}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected assigned identifier")
	}

	got, err := store.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.FullName != "Alice" || got.Email != "a@x.com" || got.PhoneNumber != "555-0100" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestGetUserByIDMalformedIDIsAbsent(t *testing.T) {
	store := NewStore()
	if _, err := store.GetUserByID(context.Background(), "not-a-uuid"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUserMergesOnlyNonEmptyFields(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	u := &domain.User{FullName: "Alice", Email: "a@x.com", PhoneNumber: "555-0100"}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	updated, err := store.UpdateUser(ctx, u.ID, domain.UserPatch{FullName: "Alicia"})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.FullName != "Alicia" {
		t.Fatalf("expected merged full name, got %q", updated.FullName)
	}
	if updated.Email != "a@x.com" || updated.PhoneNumber != "555-0100" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestUpdateUserAbsent(t *testing.T) {
	store := NewStore()
	if _, err := store.UpdateUser(context.Background(), "missing", domain.UserPatch{FullName: "X"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUserReturnsSnapshotThenAbsent(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	u := &domain.User{FullName: "Alice", Email: "a@x.com", PhoneNumber: "555-0100"}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	snapshot, err := store.DeleteUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if snapshot.FullName != "Alice" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if _, err := store.GetUserByID(ctx, u.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := store.DeleteUser(ctx, u.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListUsersInsertionOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	names := []string{"Alice", "Bob", "Carol"}
	for _, name := range names {
		if err := store.CreateUser(ctx, &domain.User{FullName: name, Email: "x@x", PhoneNumber: "1"}); err != nil {
			t.Fatalf("CreateUser %s: %v", name, err)
		}
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != len(names) {
		t.Fatalf("expected %d users, got %d", len(names), len(users))
	}
	for i, name := range names {
		if users[i].FullName != name {
			t.Fatalf("expected %q at position %d, got %q", name, i, users[i].FullName)
		}
	}
}

func TestListPostsFiltersByUser(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, userID := range []string{"u1", "u1", "u2"} {
		if err := store.CreatePost(ctx, &domain.Post{Content: "c", UserID: userID, CreatedAt: now}); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	posts, err := store.ListPosts(ctx, domain.PostFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts for u1, got %d", len(posts))
	}
	for _, p := range posts {
		if p.UserID != "u1" {
			t.Fatalf("filter leaked post for %q", p.UserID)
		}
	}

	all, err := store.ListPosts(ctx, domain.PostFilter{})
	if err != nil {
		t.Fatalf("ListPosts all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 posts unfiltered, got %d", len(all))
	}
}

func TestConcurrentCreates(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := &domain.User{FullName: "n", Email: "e", PhoneNumber: "p"}
			if err := store.CreateUser(ctx, u); err != nil {
				t.Errorf("CreateUser: %v", err)
			}
		}()
	}
	wg.Wait()

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 50 {
		t.Fatalf("expected 50 users, got %d", len(users))
	}
}
