package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
)

func TestSandboxCharge(t *testing.T) {
	t.Parallel()

	gw := NewSandbox()
	order := domain.Order{ID: "ord-1"}

	t.Run("approves by default", func(t *testing.T) {
		outcome, err := gw.Charge(context.Background(), order, "tok-visa")
		if err != nil {
			t.Fatalf("charge: %v", err)
		}
		if !outcome.Success {
			t.Fatalf("expected approval, got %+v", outcome)
		}
		if !strings.HasPrefix(outcome.Ref, "sandbox-") {
			t.Fatalf("expected sandbox ref, got %q", outcome.Ref)
		}
	})

	t.Run("declines on request", func(t *testing.T) {
		for _, token := range []string{"decline", "DECLINE-me", "Decline123"} {
			outcome, err := gw.Charge(context.Background(), order, token)
			if err != nil {
				t.Fatalf("charge: %v", err)
			}
			if outcome.Success {
				t.Fatalf("expected decline for token %q", token)
			}
			if outcome.Reason == "" {
				t.Fatalf("expected a decline reason")
			}
		}
	})
}
