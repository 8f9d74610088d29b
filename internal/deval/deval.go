// Package deval encodes the game's housing price-decay schedule. An
// unsold open plot devalues on a fixed interval, each devaluation
// applying a compounding fractional reduction to the listing price.
// Price alone cannot reveal elapsed time (the schedule is a step
// function), so the model answers two questions: how many devaluations
// does an observed price imply, and what open-time window does a
// devaluation count imply.
package deval

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrPriceMismatch means an observed price is not reachable from the
// listing price by any non-negative number of scheduled devaluations.
// Callers must treat the observation as corrupt and reject it.
var ErrPriceMismatch = errors.New("price not on devaluation schedule")

// maxDevals bounds the schedule search. At any plausible rate the price
// rounds to near zero long before this.
const maxDevals = 10000

type Model struct {
	interval time.Duration
	rate     float64
}

func New(interval time.Duration, rate float64) (*Model, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("deval interval must be positive, got %s", interval)
	}
	if rate <= 0 || rate >= 1 {
		return nil, fmt.Errorf("deval rate must be in (0, 1), got %g", rate)
	}
	return &Model{interval: interval, rate: rate}, nil
}

func (m *Model) Interval() time.Duration { return m.interval }
func (m *Model) Rate() float64           { return m.rate }

// PriceAfter returns the schedule price after n devaluations of the
// given listing price.
func (m *Model) PriceAfter(listingPrice, n int) int {
	return int(math.Round(float64(listingPrice) * math.Pow(1-m.rate, float64(n))))
}

// DevalsForPrice returns the smallest n >= 0 whose schedule price equals
// the observed price. The schedule is strictly decreasing, so the search
// stops as soon as it passes below the observed price.
func (m *Model) DevalsForPrice(listingPrice, observedPrice int) (int, error) {
	if observedPrice <= 0 || observedPrice > listingPrice {
		return 0, fmt.Errorf("%w: %d not reachable from listing %d", ErrPriceMismatch, observedPrice, listingPrice)
	}
	for n := 0; n <= maxDevals; n++ {
		p := m.PriceAfter(listingPrice, n)
		if p == observedPrice {
			return n, nil
		}
		if p < observedPrice {
			break
		}
	}
	return 0, fmt.Errorf("%w: %d not reachable from listing %d", ErrPriceMismatch, observedPrice, listingPrice)
}

// OpenWindow returns the interval during which a plot with n observed
// devaluations as of asOf must have become available: late enough that
// only n devaluations elapsed, early enough that the nth one did.
func (m *Model) OpenWindow(n int, asOf time.Time) (min, max time.Time) {
	min = asOf.Add(-time.Duration(n+1) * m.interval)
	max = asOf.Add(-time.Duration(n) * m.interval)
	return min, max
}
