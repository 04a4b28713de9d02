package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestLoginTwoStepProtocol(t *testing.T) {
	var tokenForm map[string]string
	var verifyAuth string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint: expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("token endpoint: expected form content type, got %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		tokenForm = map[string]string{
			"username": r.PostFormValue("username"),
			"password": r.PostFormValue("password"),
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "T1"})
	})
	mux.HandleFunc("/api/auth/test-token", func(w http.ResponseWriter, r *http.Request) {
		verifyAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "u-1",
			"username": "alice",
			"email":    "alice@example.com",
		})
	})

	client, _ := newTestClient(t, mux)
	user, token, err := client.Login(context.Background(), "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if token != "T1" {
		t.Fatalf("expected token T1, got %q", token)
	}
	if user.Username() != "alice" {
		t.Fatalf("expected user alice, got %q", user.Username())
	}
	// The email is sent as the OAuth2 username field.
	if tokenForm["username"] != "alice@example.com" {
		t.Fatalf("expected email in username field, got %q", tokenForm["username"])
	}
	if tokenForm["password"] != "s3cret-pass" {
		t.Fatalf("expected password forwarded, got %q", tokenForm["password"])
	}
	if verifyAuth != "Bearer T1" {
		t.Fatalf("expected bearer header on verification, got %q", verifyAuth)
	}
}

func TestLoginSurfacesBackendDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect email or password"})
	})

	client, _ := newTestClient(t, mux)
	_, _, err := client.Login(context.Background(), "alice@example.com", "wrong")
	if err == nil {
		t.Fatalf("expected login failure")
	}
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %T", err)
	}
	if authErr.Message != "Incorrect email or password" {
		t.Fatalf("expected backend detail verbatim, got %q", authErr.Message)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", authErr.StatusCode)
	}
}

func TestLoginFallsBackWhenDetailMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})

	client, _ := newTestClient(t, mux)
	_, _, err := client.Login(context.Background(), "alice@example.com", "s3cret-pass")

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if authErr.Message != "login failed" {
		t.Fatalf("expected generic fallback, got %q", authErr.Message)
	}
}

func TestLoginFailsWhenVerificationRejects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "T1"})
	})
	mux.HandleFunc("/api/auth/test-token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, _ := newTestClient(t, mux)
	_, _, err := client.Login(context.Background(), "alice@example.com", "s3cret-pass")
	if err == nil {
		t.Fatalf("expected verification failure to fail login")
	}

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if !authErr.Verify {
		t.Fatalf("expected verification-step error")
	}
	if authErr.Message != "failed to get user data" {
		t.Fatalf("expected fixed verification message, got %q", authErr.Message)
	}
}

func TestLoginRejectsTokenResponseWithoutAccessToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token_type": "bearer"})
	})

	client, _ := newTestClient(t, mux)
	if _, _, err := client.Login(context.Background(), "alice@example.com", "s3cret-pass"); err == nil {
		t.Fatalf("expected failure for missing access token")
	}
}

func TestRegisterSendsJSONPayload(t *testing.T) {
	var received map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/register", func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode register payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "u-2", "username": received["username"]})
	})

	client, _ := newTestClient(t, mux)
	user, err := client.Register(context.Background(), "bob", "bob@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username() != "bob" {
		t.Fatalf("expected created user bob, got %q", user.Username())
	}
	if received["username"] != "bob" || received["email"] != "bob@example.com" || received["password"] != "s3cret-pass" {
		t.Fatalf("unexpected register payload: %v", received)
	}
}

func TestRegisterSurfacesBackendDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
	})

	client, _ := newTestClient(t, mux)
	_, err := client.Register(context.Background(), "bob", "bob@example.com", "s3cret-pass")
	if !errors.Is(err, ErrRegistrationFailed) {
		t.Fatalf("expected ErrRegistrationFailed, got %v", err)
	}

	var regErr *RegistrationError
	if !errors.As(err, &regErr) {
		t.Fatalf("expected RegistrationError, got %T", err)
	}
	if regErr.Message != "Email already registered" {
		t.Fatalf("expected backend detail verbatim, got %q", regErr.Message)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	var requested, applied map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/request-password-reset", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&requested); err != nil {
			t.Errorf("decode reset request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/users/reset-password", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&applied); err != nil {
			t.Errorf("decode reset: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	client, _ := newTestClient(t, mux)
	if err := client.RequestPasswordReset(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if requested["email"] != "alice@example.com" {
		t.Fatalf("unexpected reset request payload: %v", requested)
	}

	if err := client.ResetPassword(context.Background(), "reset-tok", "new-s3cret"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if applied["token"] != "reset-tok" || applied["new_password"] != "new-s3cret" {
		t.Fatalf("unexpected reset payload: %v", applied)
	}
}

func TestResetPasswordSurfacesBackendDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/reset-password", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid token"})
	})

	client, _ := newTestClient(t, mux)
	err := client.ResetPassword(context.Background(), "expired", "new-s3cret")
	if !errors.Is(err, ErrPasswordResetFailed) {
		t.Fatalf("expected ErrPasswordResetFailed, got %v", err)
	}
	if UserMessageFromError(err) != "Invalid token" {
		t.Fatalf("expected backend detail as user message, got %q", UserMessageFromError(err))
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for missing base URL")
	}
}

func TestConfigEndpointDefaults(t *testing.T) {
	client, err := New(Config{BaseURL: "https://tracker.example.com/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.config.BaseURL != "https://tracker.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", client.config.BaseURL)
	}
	if client.config.TokenEndpoint != "/api/auth/token" {
		t.Fatalf("unexpected token endpoint %q", client.config.TokenEndpoint)
	}
	if client.config.VerifyEndpoint != "/api/auth/test-token" {
		t.Fatalf("unexpected verify endpoint %q", client.config.VerifyEndpoint)
	}
}
