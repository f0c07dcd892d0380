package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessageStripsKind(t *testing.T) {
	err := fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation kind")
	}
	if got := Message(err); got != "password must be at least 6 characters" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestMessagePassesThroughPlainErrors(t *testing.T) {
	if got := Message(errors.New("boom")); got != "boom" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Message(nil); got != "" {
		t.Fatalf("expected empty message, got %q", got)
	}
}
