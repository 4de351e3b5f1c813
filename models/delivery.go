package models

// DeliveryRule charges Fee unless the subtotal is above FreeThreshold.
// Both values are in cents.
type DeliveryRule struct {
	FreeThreshold int64
	Fee           int64
}

var DefaultDeliveryRule = DeliveryRule{FreeThreshold: 10_000, Fee: 500}

func (r DeliveryRule) Calculate(subtotal int64) int64 {
	if subtotal > r.FreeThreshold {
		return 0
	}
	return r.Fee
}
