package accounts

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreFindByEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(&Account{Email: "alice@example.com", NotesPath: "https://github.com/alice/vault"})

	acct, err := store.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if acct.NotesPath != "https://github.com/alice/vault" {
		t.Fatalf("unexpected account %#v", acct)
	}

	if _, err := store.FindByEmail(ctx, "bob@example.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("FindByEmail() unknown error = %v, want ErrAccountNotFound", err)
	}
	if _, err := store.FindByEmail(ctx, "  "); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("FindByEmail() blank error = %v, want ErrInvalidEmail", err)
	}
}

func TestMemoryStoreUpdateNotesPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(&Account{Email: "alice@example.com"})

	updated, err := store.UpdateNotesPath(ctx, "alice@example.com", "https://github.com/alice/vault")
	if err != nil {
		t.Fatalf("UpdateNotesPath() error = %v", err)
	}
	if updated.NotesPath != "https://github.com/alice/vault" {
		t.Fatalf("unexpected account %#v", updated)
	}

	reloaded, err := store.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if reloaded.NotesPath != "https://github.com/alice/vault" {
		t.Fatalf("update not persisted: %#v", reloaded)
	}

	if _, err := store.UpdateNotesPath(ctx, "bob@example.com", "x"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("UpdateNotesPath() unknown error = %v, want ErrAccountNotFound", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(&Account{Email: "alice@example.com"})

	acct, err := store.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	acct.NotesPath = "mutated"

	reloaded, err := store.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if reloaded.NotesPath == "mutated" {
		t.Fatal("store must hand out copies")
	}
}
