// Package pricing holds the points-discount computation. It is pure: the
// booking service feeds it the event price and the user's current balance
// inside an open transaction and applies the resulting quote atomically.
package pricing

import "math"

// PointMultiplier is the currency value of a single loyalty point.
const PointMultiplier = 1000

// Quote is the outcome of applying a user's point balance to a price.
type Quote struct {
	DiscountedPrice float64
	PointsSpent     float64
	RemainingPoints float64
	// PointsInCurrency is the currency value of the balance that was
	// available, reported back to the caller alongside the booking.
	PointsInCurrency float64
}

// ComputeDiscount applies the full point balance to the event price.
//
// There is no partial spend: if the balance does not cover the whole price,
// every point is consumed. If the balance exceeds the price, the price drops
// to zero and the surplus converts back into points, which can leave a
// fractional balance. That remainder is intentional and preserved.
func ComputeDiscount(eventPrice, userPoints float64) Quote {
	if userPoints <= 0 {
		return Quote{DiscountedPrice: eventPrice}
	}

	pointsInCurrency := userPoints * PointMultiplier
	tentative := eventPrice - pointsInCurrency

	if tentative >= 0 {
		return Quote{
			DiscountedPrice:  tentative,
			PointsSpent:      userPoints,
			RemainingPoints:  0,
			PointsInCurrency: pointsInCurrency,
		}
	}

	remaining := math.Abs(tentative) / PointMultiplier
	return Quote{
		DiscountedPrice:  0,
		PointsSpent:      userPoints - remaining,
		RemainingPoints:  remaining,
		PointsInCurrency: pointsInCurrency,
	}
}

// PointsUsedFor derives how many points a booking spent, given the event's
// full price and the amount actually charged. Used by cancellation to decide
// the compensating credit.
func PointsUsedFor(eventPrice, chargedAmount float64) float64 {
	return (eventPrice - chargedAmount) / PointMultiplier
}
