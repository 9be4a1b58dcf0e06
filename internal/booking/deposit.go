package booking

// DepositRate is the share of the total price the client is asked to pay up
// front. The figure is informational only: nothing in the booking flow
// enforces it as a minimum.
const DepositRate = 0.20

// DepositCents returns the advertised deposit for a total price, rounded to
// the nearest cent (half away from zero).
func DepositCents(totalCents uint32) uint32 {
	return uint32(float64(totalCents)*DepositRate + 0.5)
}
