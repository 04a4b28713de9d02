package whiskeytracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/whwar9739/WhiskeyTracker/command"
	"github.com/whwar9739/WhiskeyTracker/gateway"
	"github.com/whwar9739/WhiskeyTracker/guard"
	"github.com/whwar9739/WhiskeyTracker/session"
	"github.com/whwar9739/WhiskeyTracker/storage"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostFormValue("username") != "alice@example.com" || r.PostFormValue("password") != "s3cret-pass" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect email or password"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "T1"})
	})
	mux.HandleFunc("/api/auth/test-token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "u-1",
			"username": "alice",
			"email":    "alice@example.com",
		})
	})
	mux.HandleFunc("/api/users/register", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode register payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "u-2",
			"username": payload["username"],
			"email":    payload["email"],
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClientLoginLogoutLifecycle(t *testing.T) {
	backend := newBackend(t)
	port := storage.NewMemory()

	client, err := New(
		Config{Gateway: gateway.Config{BaseURL: backend.URL}},
		WithStorage(port),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	// Fresh storage restores to unauthenticated; the guard redirects.
	if decision, target := client.Evaluate(); decision != guard.DecisionRedirect || target != "/" {
		t.Fatalf("expected redirect to entry, got %s %q", decision, target)
	}

	snapshot, err := client.Provider().Login(context.Background(), "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if snapshot.State != session.StateAuthenticated || snapshot.Token != "T1" {
		t.Fatalf("unexpected snapshot: state=%s token=%q", snapshot.State, snapshot.Token)
	}
	if decision, _ := client.Evaluate(); decision != guard.DecisionAllow {
		t.Fatalf("expected guard to allow after login, got %s", decision)
	}

	client.Provider().Logout()
	if decision, _ := client.Evaluate(); decision != guard.DecisionRedirect {
		t.Fatalf("expected guard to redirect after logout, got %s", decision)
	}
	if _, ok := port.Get("token"); ok {
		t.Fatalf("expected persisted token removed after logout")
	}
}

func TestClientRestoresPersistedSession(t *testing.T) {
	backend := newBackend(t)

	port := storage.NewMemory()
	port.Set("token", "T1")
	port.Set("user", `{"id":"u-1","username":"alice"}`)

	client, err := New(
		Config{Gateway: gateway.Config{BaseURL: backend.URL}},
		WithStorage(port),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if client.Provider().State() != session.StateAuthenticated {
		t.Fatalf("expected restored session, got %s", client.Provider().State())
	}
	if decision, _ := client.Evaluate(); decision != guard.DecisionAllow {
		t.Fatalf("expected guard to allow restored session, got %s", decision)
	}
}

func TestClientCommandsDriveSession(t *testing.T) {
	backend := newBackend(t)

	client, err := New(
		Config{Gateway: gateway.Config{BaseURL: backend.URL}},
		WithStorage(storage.NewMemory()),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	commands := client.Commands()
	collector := gocmd.NewResult[session.Snapshot]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := commands.Login.Execute(ctx, command.LoginMessage{
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	}); err != nil {
		t.Fatalf("execute login command: %v", err)
	}
	snapshot, ok := collector.Load()
	if !ok {
		t.Fatalf("expected snapshot result")
	}
	if snapshot.State != session.StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", snapshot.State)
	}
	if !client.Provider().IsAuthenticated() {
		t.Fatalf("expected provider to reflect command login")
	}
}

func TestClientGuardHonorsConfiguredEntryRoute(t *testing.T) {
	backend := newBackend(t)

	client, err := New(
		Config{
			Gateway: gateway.Config{BaseURL: backend.URL},
			Session: session.Config{EntryRoute: "/welcome"},
		},
		WithStorage(storage.NewMemory()),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	decision, target := client.Evaluate()
	if decision != guard.DecisionRedirect || target != "/welcome" {
		t.Fatalf("expected redirect to /welcome, got %s %q", decision, target)
	}
}

func TestNewRequiresGatewayBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for missing gateway base URL")
	}
}
