package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsChains(t *testing.T) {
	base := New(NotFound, "note not found")
	wrapped := fmt.Errorf("update note: %w", base)
	if got := KindOf(wrapped); got != NotFound {
		t.Fatalf("expected not found kind, got %s", got)
	}
	if got := MessageOf(wrapped); got != "note not found" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestInternalErrorsHideDetail(t *testing.T) {
	err := Wrap(Internal, "list notes", errors.New("connection refused"))
	if got := MessageOf(err); got != "server error" {
		t.Fatalf("expected generic message, got %q", got)
	}
	if got := MessageOf(errors.New("boom")); got != "server error" {
		t.Fatalf("expected generic message for plain error, got %q", got)
	}
	if KindOf(errors.New("boom")) != Internal {
		t.Fatalf("expected plain errors to be internal")
	}
}

func TestIsMatchesKindAndMessage(t *testing.T) {
	err := fmt.Errorf("ctx: %w", New(Auth, "invalid credentials"))
	if !errors.Is(err, &Error{Kind: Auth}) {
		t.Fatalf("expected kind-only match")
	}
	if !errors.Is(err, New(Auth, "invalid credentials")) {
		t.Fatalf("expected exact match")
	}
	if errors.Is(err, New(Auth, "token expired")) {
		t.Fatalf("expected message mismatch")
	}
	if errors.Is(err, &Error{Kind: NotFound}) {
		t.Fatalf("expected kind mismatch")
	}
}
