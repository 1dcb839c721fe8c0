// Package payment adapts an external payment processor to the pass/fail
// outcome settlement consumes.
package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
)

// Sandbox approves every charge unless the token asks for a decline. It
// stands in for a real processor in local development and tests; the
// outcome shape is the whole contract.
type Sandbox struct{}

func NewSandbox() *Sandbox {
	return &Sandbox{}
}

const declinePrefix = "decline"

func (Sandbox) Charge(_ context.Context, order domain.Order, token string) (domain.PaymentOutcome, error) {
	if strings.HasPrefix(strings.ToLower(token), declinePrefix) {
		return domain.PaymentOutcome{
			Success: false,
			Ref:     "sandbox-" + uuid.NewString(),
			Reason:  "card declined",
		}, nil
	}
	return domain.PaymentOutcome{
		Success: true,
		Ref:     "sandbox-" + uuid.NewString(),
	}, nil
}
