package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yaguaretech/builder/models"
)

func demoUser() models.GitHubUser {
	name := "Demo User"
	return models.GitHubUser{ID: 42, Login: "demo", AvatarURL: "https://example.com/a.png", Name: &name}
}

func TestGitHubSession_SaveLoadDisconnect(t *testing.T) {
	ctx := context.Background()
	s := ForSession(NewMemoryStore(), "sid-1")

	if _, ok, err := s.Load(ctx); ok || err != nil {
		t.Fatalf("fresh session should be disconnected, got ok=%v err=%v", ok, err)
	}

	if err := s.Save(ctx, "gho_abc", demoUser()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	user, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load after Save: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(demoUser(), user); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}

	if err := s.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if _, ok, _ := s.Load(ctx); ok {
		t.Error("session still connected after Disconnect")
	}
	if _, ok, _ := s.Token(ctx); ok {
		t.Error("token survived Disconnect")
	}
}

func TestGitHubSession_IsolatedBySessionID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := ForSession(store, "a").Save(ctx, "tok", demoUser()); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := ForSession(store, "b").Load(ctx); ok {
		t.Error("session b sees session a's connection")
	}
}

func TestGitHubSession_CorruptUserIsDisconnected(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, "sid", KeyToken, "tok")
	_ = store.Set(ctx, "sid", KeyUser, "{not json")

	if _, ok, err := ForSession(store, "sid").Load(ctx); ok || err != nil {
		t.Errorf("corrupt user should load as disconnected, got ok=%v err=%v", ok, err)
	}
}

func TestGitHubSession_StateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := ForSession(NewMemoryStore(), "sid")

	state, err := s.IssueState(ctx)
	if err != nil {
		t.Fatalf("IssueState: %v", err)
	}
	if len(state) != 32 {
		t.Errorf("expected 32 hex chars, got %q", state)
	}

	if err := s.ConsumeState(ctx, state); err != nil {
		t.Fatalf("first ConsumeState: %v", err)
	}
	if err := s.ConsumeState(ctx, state); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("replayed state accepted: %v", err)
	}
}

func TestGitHubSession_StateMismatchClearsNonce(t *testing.T) {
	ctx := context.Background()
	s := ForSession(NewMemoryStore(), "sid")

	state, _ := s.IssueState(ctx)
	if err := s.ConsumeState(ctx, "forged"); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := s.ConsumeState(ctx, state); !errors.Is(err, ErrStateMismatch) {
		t.Error("nonce should be gone after a failed check")
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.Set(ctx, "sid", "k1", "v1")
	_ = m.Set(ctx, "sid", "k2", "v2")

	if err := m.Clear(ctx, "sid"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.Get(ctx, "sid", "k1"); ok {
		t.Error("k1 survived Clear")
	}
}
