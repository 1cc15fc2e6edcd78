package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/nkaroui/soapdir/internal/repository/memory"
	"github.com/nkaroui/soapdir/internal/service/post"
	"github.com/nkaroui/soapdir/internal/service/user"
	"github.com/nkaroui/soapdir/internal/soap"
	"github.com/nkaroui/soapdir/internal/util"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	userRegistry := soap.NewRegistry(log)
	user.New(store, log).Register(userRegistry)

	postRegistry := soap.NewRegistry(log)
	post.New(store, util.NewStubClock(), log).Register(postRegistry)

	contract := []byte(`<definitions name="UserService"/>`)
	router := NewRouter(log, userRegistry, postRegistry, contract, contract, nil, time.Second, func(ctx context.Context) error { return nil })
	t.Cleanup(router.Close)
	return router
}

func dispatch(t *testing.T, router *Router, path, service, port, operation string, args map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"service":   service,
		"port":      port,
		"operation": operation,
		"args":      args,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func faultReasonText(t *testing.T, body map[string]any) string {
	t.Helper()
	fault, ok := body["Fault"].(map[string]any)
	if !ok {
		t.Fatalf("expected fault envelope, got %v", body)
	}
	reason, ok := fault["Reason"].(map[string]any)
	if !ok {
		t.Fatalf("malformed fault reason: %v", fault)
	}
	text, _ := reason["Text"].(string)
	return text
}

func TestRootServesLivenessBanner(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "is running") {
		t.Fatalf("unexpected banner: %q", rec.Body.String())
	}
}

func TestHealthzReportsDatabaseUp(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Fatalf("unexpected health payload: %v", body)
	}
}

func TestServiceEndpointServesContract(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/soap/user?wsdl", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Fatalf("unexpected content type: %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "UserService") {
		t.Fatalf("unexpected contract body: %q", rec.Body.String())
	}
}

func TestInvalidEnvelopeIsClientFault(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/soap/user", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if reason := faultReasonText(t, decodeBody(t, rec)); reason != "invalid envelope" {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

func TestUnknownOperationIsServerFault(t *testing.T) {
	router := newTestRouter(t)
	rec := dispatch(t, router, "/soap/user", user.ServiceName, user.PortName, "noSuchOp", nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if reason := faultReasonText(t, decodeBody(t, rec)); reason != "unknown operation" {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

func TestGetUserDetailsMissingUserIsClientFault(t *testing.T) {
	router := newTestRouter(t)
	rec := dispatch(t, router, "/soap/user", user.ServiceName, user.PortName, "getUserDetails", map[string]string{"userId": "missing"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if reason := faultReasonText(t, decodeBody(t, rec)); reason != "User not found" {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

func TestUserAndPostLifecycleAcrossEndpoints(t *testing.T) {
	router := newTestRouter(t)

	// addUser
	rec := dispatch(t, router, "/soap/user", user.ServiceName, user.PortName, "addUser", map[string]string{
		"fullName":    "Alice",
		"email":       "a@x.com",
		"phoneNumber": "555-0100",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("addUser: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	userID, _ := decodeBody(t, rec)["userId"].(string)
	if userID == "" {
		t.Fatal("addUser returned no userId")
	}

	// addPost bound to the new user
	rec = dispatch(t, router, "/soap/post", post.ServiceName, post.PortName, "addPost", map[string]string{
		"content": "hello",
		"userId":  userID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("addPost: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	postID, _ := decodeBody(t, rec)["postId"].(string)
	if postID == "" {
		t.Fatal("addPost returned no postId")
	}

	// listPosts returns the single post
	rec = dispatch(t, router, "/soap/post", post.ServiceName, post.PortName, "listPosts", map[string]string{"userId": userID})
	if rec.Code != http.StatusOK {
		t.Fatalf("listPosts: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	posts, _ := decodeBody(t, rec)["posts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("expected one post, got %d", len(posts))
	}
	entry, _ := posts[0].(map[string]any)
	if entry["postId"] != postID || entry["content"] != "hello" {
		t.Fatalf("unexpected post entry: %v", entry)
	}
	if createdAt, _ := entry["createdAt"].(string); createdAt == "" {
		t.Fatalf("expected createdAt timestamp, got %v", entry["createdAt"])
	}

	// deleteUser succeeds
	rec = dispatch(t, router, "/soap/user", user.ServiceName, user.PortName, "deleteUser", map[string]string{"userId": userID})
	if rec.Code != http.StatusOK {
		t.Fatalf("deleteUser: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if msg, _ := decodeBody(t, rec)["message"].(string); msg != "User deleted successfully" {
		t.Fatalf("unexpected message: %q", msg)
	}

	// no cascade: the post survives its author
	rec = dispatch(t, router, "/soap/post", post.ServiceName, post.PortName, "listPosts", map[string]string{"userId": userID})
	if rec.Code != http.StatusOK {
		t.Fatalf("listPosts after delete: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	posts, _ = decodeBody(t, rec)["posts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("expected post to survive user deletion, got %d posts", len(posts))
	}
}

func TestAddPostAcceptsDanglingReferenceOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	rec := dispatch(t, router, "/soap/post", post.ServiceName, post.PortName, "addPost", map[string]string{
		"content": "orphan",
		"userId":  "no-such-user",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestServiceEndpointRejectsUnsupportedMethod(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodDelete, "/soap/user", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestRateLimitHeadersPresent(t *testing.T) {
	router := newTestRouter(t)
	rec := dispatch(t, router, "/soap/user", user.ServiceName, user.PortName, "listUsers", nil)

	if rec.Header().Get("X-RateLimit-Limit") == "" {
		t.Fatal("expected X-RateLimit-Limit header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") == "" {
		t.Fatal("expected X-RateLimit-Remaining header")
	}
}
