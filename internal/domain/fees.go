package domain

// FeePolicy is the single source of truth for cancellation and rebook charges.
// Both fees are a fixed fraction of the flight's base price, not of the class
// price.
type FeePolicy struct {
	CancellationRate float64
	RebookRate       float64
}

// DefaultFeePolicy returns the canonical rates: 5% on cancellation, 2% on
// rebooking.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		CancellationRate: 0.05,
		RebookRate:       0.02,
	}
}

func (p FeePolicy) CancellationFee(f *Flight) float64 {
	return p.CancellationRate * f.BasePrice
}

func (p FeePolicy) RebookFee(f *Flight) float64 {
	return p.RebookRate * f.BasePrice
}
