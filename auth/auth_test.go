package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rudra/storage"
)

func testService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("storage.Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := testService(t)

	identity, err := svc.Register("Alice", "alice@example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if identity.Name != "Alice" || identity.ID == "" {
		t.Errorf("identity = %+v, want named Alice with an ID", identity)
	}

	token, loggedIn, err := svc.Login("alice@example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if token == "" {
		t.Error("Login() returned empty token")
	}
	if loggedIn.ID != identity.ID {
		t.Errorf("login identity = %+v, want registered identity", loggedIn)
	}
}

func TestLoginEmailCaseInsensitive(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Register("Alice", "Alice@Example.com", "pw"); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	if _, _, err := svc.Login("alice@example.com", "pw"); err != nil {
		t.Errorf("Login(lowercased email) error = %v, want nil", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := testService(t)
	svc.Register("Alice", "alice@example.com", "correct-password")

	if _, _, err := svc.Login("alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login("nobody@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown email) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := testService(t)
	svc.Register("Alice", "alice@example.com", "password-one")

	if _, err := svc.Register("Other Alice", "alice@example.com", "password-two"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestIdentifyBearerAndCookie(t *testing.T) {
	svc, _ := testService(t)
	svc.Register("Alice", "alice@example.com", "pw")
	token, identity, err := svc.Login("alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	bearer := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
	bearer.Header.Set("Authorization", "Bearer "+token)
	got, err := svc.Identify(bearer)
	if err != nil {
		t.Fatalf("Identify(bearer) error: %v", err)
	}
	if got.ID != identity.ID {
		t.Errorf("Identify(bearer) = %+v, want %+v", got, identity)
	}

	withCookie := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
	withCookie.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	got, err = svc.Identify(withCookie)
	if err != nil {
		t.Fatalf("Identify(cookie) error: %v", err)
	}
	if got.ID != identity.ID {
		t.Errorf("Identify(cookie) = %+v, want %+v", got, identity)
	}
}

func TestIdentifyRejectsMissingAndBogusTokens(t *testing.T) {
	svc, _ := testService(t)

	anonymous := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
	if _, err := svc.Identify(anonymous); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Identify(no token) error = %v, want ErrUnauthorized", err)
	}

	bogus := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
	bogus.Header.Set("Authorization", "Bearer not-a-session")
	if _, err := svc.Identify(bogus); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Identify(bogus token) error = %v, want ErrUnauthorized", err)
	}
}

func TestIdentifyExpiredSession(t *testing.T) {
	svc, store := testService(t)
	identity, err := svc.Register("Alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	now := time.Now().UTC()
	store.CreateSession(storage.Session{
		Token:     "stale-token",
		UserID:    identity.ID,
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-31 * 24 * time.Hour),
	})

	r := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
	r.Header.Set("Authorization", "Bearer stale-token")
	if _, err := svc.Identify(r); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Identify(expired) error = %v, want ErrUnauthorized", err)
	}
	if _, err := store.GetSession("stale-token"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expired session still stored, err = %v", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc, _ := testService(t)
	svc.Register("Alice", "alice@example.com", "pw")
	token, _, _ := svc.Login("alice@example.com", "pw")

	if err := svc.Logout(token); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	if _, err := svc.Identify(r); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Identify(after logout) error = %v, want ErrUnauthorized", err)
	}
}
