package domain

// PaymentOutcome is the opaque result of a charge attempt. Settlement only
// consumes the pass/fail flag and the gateway reference.
type PaymentOutcome struct {
	Success bool
	Ref     string
	Reason  string
}
