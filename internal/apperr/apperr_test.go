package apperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUserErrorDetection(t *testing.T) {
	err := Userf("unknown figure %q", "fig9")
	if !IsUser(err) {
		t.Fatalf("expected IsUser to be true for %v", err)
	}
	wrapped := fmt.Errorf("generate: %w", err)
	if !IsUser(wrapped) {
		t.Fatalf("expected IsUser to see through wrapping")
	}
	if IsUser(errors.New("plain")) {
		t.Fatalf("plain error must not be a user error")
	}
	if got := err.Error(); got != `unknown figure "fig9"` {
		t.Fatalf("Error() = %q", got)
	}
}

func TestTableWrapsSentinel(t *testing.T) {
	err := Table("regions", "arsenic has %d values, want %d", 19, 20)
	if !errors.Is(err, ErrMalformedTable) {
		t.Fatalf("expected ErrMalformedTable, got %v", err)
	}
	for _, want := range []string{"regions", "19", "20"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err.Error(), want)
		}
	}
}
