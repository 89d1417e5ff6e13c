package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRestoreAfterCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	st := NewStore(path)
	id := Identity{ID: 7, Username: "alice", DailyQuota: 120}
	if err := st.Commit(id, "jwt-credential"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Simulated application reload: a fresh store over the same file.
	st2 := NewStore(path)
	if err := st2.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !st2.Authenticated() {
		t.Fatal("restored store is not authenticated")
	}
	if got := st2.Credential(); got != "jwt-credential" {
		t.Fatalf("credential = %q", got)
	}
	got, ok := st2.Identity()
	if !ok {
		t.Fatal("restored store has no identity")
	}
	if got != id {
		t.Fatalf("identity = %+v, want %+v", got, id)
	}
}

func TestRestoreMissingFileIsUnauthenticated(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "missing.json"))
	if err := st.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if st.Authenticated() {
		t.Fatal("store authenticated without a session file")
	}
}

func TestRestorePartialFileIsUnauthenticated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"access_token":"x"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	st := NewStore(path)
	if err := st.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if st.Authenticated() {
		t.Fatal("store authenticated from credential-only file")
	}
}

func TestClearErasesPersistedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	st := NewStore(path)
	if err := st.Commit(Identity{ID: 1, Username: "bob"}, "tok"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := st.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if st.Authenticated() {
		t.Fatal("store still authenticated after clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("session file still present after clear: %v", err)
	}
	// Clearing twice must not fail.
	if err := st.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestCommitRejectsEmptyCredential(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err := st.Commit(Identity{ID: 1}, "  "); err == nil {
		t.Fatal("commit accepted empty credential")
	}
}

func TestUpdateIdentityKeepsCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	st := NewStore(path)
	if err := st.Commit(Identity{ID: 1, Username: "bob", DailyQuota: 50}, "tok"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := st.UpdateIdentity(Identity{ID: 1, Username: "bob", DailyQuota: 150}); err != nil {
		t.Fatalf("update identity: %v", err)
	}
	st2 := NewStore(path)
	if err := st2.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := st2.Credential(); got != "tok" {
		t.Fatalf("credential = %q after identity update", got)
	}
	id, _ := st2.Identity()
	if id.DailyQuota != 150 {
		t.Fatalf("daily quota = %d, want 150", id.DailyQuota)
	}
}
