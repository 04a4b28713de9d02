package session

import (
	"testing"

	"github.com/whwar9739/WhiskeyTracker/storage"
)

func newTestStore(port storage.Port) *Store {
	return NewStore(port, "token", "user", nil)
}

func TestStoreStartsInitializing(t *testing.T) {
	store := newTestStore(storage.NewMemory())

	if !store.Initializing() {
		t.Fatalf("expected store to start initializing, got %s", store.State())
	}
	if _, ok := store.CurrentToken(); ok {
		t.Fatalf("expected no token before restore")
	}
	if _, ok := store.CurrentUser(); ok {
		t.Fatalf("expected no user before restore")
	}
}

func TestStoreRestoreWithPersistedSession(t *testing.T) {
	port := storage.NewMemory()
	port.Set("token", "T1")
	port.Set("user", `{"id":"u-1","username":"alice","email":"alice@example.com"}`)

	store := newTestStore(port)
	snapshot := store.Restore()

	if snapshot.State != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", snapshot.State)
	}
	if snapshot.Token != "T1" {
		t.Fatalf("expected token T1, got %q", snapshot.Token)
	}
	if snapshot.User.Username() != "alice" {
		t.Fatalf("expected restored user alice, got %q", snapshot.User.Username())
	}
}

func TestStoreRestoreWithNothingPersisted(t *testing.T) {
	store := newTestStore(storage.NewMemory())
	snapshot := store.Restore()

	if snapshot.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", snapshot.State)
	}
	if snapshot.Token != "" || snapshot.User != nil {
		t.Fatalf("expected empty snapshot, got token=%q user=%v", snapshot.Token, snapshot.User)
	}
}

func TestStoreRestoreWithOneEntryMissing(t *testing.T) {
	port := storage.NewMemory()
	port.Set("token", "T1")

	store := newTestStore(port)
	snapshot := store.Restore()

	if snapshot.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated when user entry is missing, got %s", snapshot.State)
	}
	// A lone entry is incomplete, not corrupt; it stays in place.
	if _, ok := port.Get("token"); !ok {
		t.Fatalf("expected lone token entry to be left untouched")
	}
}

func TestStoreRestoreRemovesCorruptEntries(t *testing.T) {
	port := storage.NewMemory()
	port.Set("token", "T1")
	port.Set("user", "{not json")

	store := newTestStore(port)
	snapshot := store.Restore()

	if snapshot.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated after corruption, got %s", snapshot.State)
	}
	if _, ok := port.Get("token"); ok {
		t.Fatalf("expected corrupt session token to be removed")
	}
	if _, ok := port.Get("user"); ok {
		t.Fatalf("expected corrupt session user to be removed")
	}
}

func TestStoreSetSessionPersistsBothEntries(t *testing.T) {
	port := storage.NewMemory()
	store := newTestStore(port)
	store.Restore()

	user := UserRecord{"id": "u-1", "username": "alice"}
	snapshot, err := store.SetSession(user, "T1")
	if err != nil {
		t.Fatalf("set session: %v", err)
	}
	if snapshot.State != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", snapshot.State)
	}

	if token, ok := port.Get("token"); !ok || token != "T1" {
		t.Fatalf("expected persisted token T1, got %q ok=%v", token, ok)
	}
	raw, ok := port.Get("user")
	if !ok {
		t.Fatalf("expected persisted user entry")
	}
	persisted, err := ParseUserRecord(raw)
	if err != nil {
		t.Fatalf("parse persisted user: %v", err)
	}
	if persisted.ID() != "u-1" {
		t.Fatalf("expected persisted user id u-1, got %q", persisted.ID())
	}
}

func TestStoreSetSessionRequiresBothValues(t *testing.T) {
	store := newTestStore(storage.NewMemory())
	store.Restore()

	if _, err := store.SetSession(nil, "T1"); err == nil {
		t.Fatalf("expected error for nil user")
	}
	if _, err := store.SetSession(UserRecord{"id": "u-1"}, ""); err == nil {
		t.Fatalf("expected error for empty token")
	}
	if store.State() != StateUnauthenticated {
		t.Fatalf("expected state unchanged after rejected writes, got %s", store.State())
	}
}

func TestStoreClearSessionRemovesBothEntries(t *testing.T) {
	port := storage.NewMemory()
	store := newTestStore(port)
	store.Restore()
	if _, err := store.SetSession(UserRecord{"id": "u-1"}, "T1"); err != nil {
		t.Fatalf("set session: %v", err)
	}

	snapshot := store.ClearSession()
	if snapshot.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated after clear, got %s", snapshot.State)
	}
	if _, ok := port.Get("token"); ok {
		t.Fatalf("expected token entry removed")
	}
	if _, ok := port.Get("user"); ok {
		t.Fatalf("expected user entry removed")
	}
	if _, ok := store.CurrentToken(); ok {
		t.Fatalf("expected no current token after clear")
	}
}

func TestStoreSnapshotClonesUser(t *testing.T) {
	store := newTestStore(storage.NewMemory())
	store.Restore()
	if _, err := store.SetSession(UserRecord{"id": "u-1", "username": "alice"}, "T1"); err != nil {
		t.Fatalf("set session: %v", err)
	}

	snapshot := store.Snapshot()
	snapshot.User["username"] = "mallory"

	current, ok := store.CurrentUser()
	if !ok {
		t.Fatalf("expected current user")
	}
	if current.Username() != "alice" {
		t.Fatalf("snapshot mutation leaked into store: %q", current.Username())
	}
}
