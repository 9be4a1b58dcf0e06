// Package payment wraps the third-party payment gateways used for
// appointment deposits. Each gateway implements Provider so handlers can
// verify a transaction reference without caring which processor issued
// it. Verification is read-only against the provider's API: the amount
// charged is whatever the checkout flow collected, and the server only
// records the reference once the provider reports the charge succeeded.
package payment

import "context"

// Provider verifies completed transactions with an external processor.
type Provider interface {
	// Verify reports whether the transaction behind reference has been
	// successfully paid. A false return with nil error means the provider
	// knows the reference but the charge has not (yet) succeeded.
	Verify(ctx context.Context, reference string) (bool, error)
}
