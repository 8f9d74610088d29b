package deval

import (
	"errors"
	"testing"
	"time"
)

func mustModel(t *testing.T, interval time.Duration, rate float64) *Model {
	t.Helper()
	m, err := New(interval, rate)
	if err != nil {
		t.Fatalf("New(%s, %g): %v", interval, rate, err)
	}
	return m
}

func TestNew_RejectsBadParameters(t *testing.T) {
	cases := []struct {
		interval time.Duration
		rate     float64
	}{
		{0, 0.0042},
		{-time.Hour, 0.0042},
		{6 * time.Hour, 0},
		{6 * time.Hour, 1},
		{6 * time.Hour, -0.5},
		{6 * time.Hour, 1.5},
	}
	for _, c := range cases {
		if _, err := New(c.interval, c.rate); err == nil {
			t.Fatalf("New(%s, %g): expected error", c.interval, c.rate)
		}
	}
}

func TestDevalsForPrice_KnownSchedule(t *testing.T) {
	m := mustModel(t, 72*time.Hour, 0.025)
	const listing = 50_000_000

	if p := m.PriceAfter(listing, 0); p != listing {
		t.Fatalf("PriceAfter(0) = %d, want %d", p, listing)
	}
	if p := m.PriceAfter(listing, 2); p != 47_531_250 {
		t.Fatalf("PriceAfter(2) = %d, want 47531250", p)
	}

	n, err := m.DevalsForPrice(listing, 47_531_250)
	if err != nil {
		t.Fatalf("DevalsForPrice: %v", err)
	}
	if n != 2 {
		t.Fatalf("DevalsForPrice = %d, want 2", n)
	}
}

func TestDevalsForPrice_RoundTrip(t *testing.T) {
	m := mustModel(t, 6*time.Hour, 0.0042)
	const listing = 3_187_500

	// Every schedule price must map back to exactly its own count.
	for n := 0; n <= 200; n++ {
		price := m.PriceAfter(listing, n)
		got, err := m.DevalsForPrice(listing, price)
		if err != nil {
			t.Fatalf("n=%d price=%d: %v", n, price, err)
		}
		if got != n {
			t.Fatalf("n=%d price=%d: round-tripped to %d", n, price, got)
		}
	}
}

func TestDevalsForPrice_Mismatch(t *testing.T) {
	m := mustModel(t, 72*time.Hour, 0.025)
	const listing = 50_000_000

	cases := []int{
		listing + 1,         // above listing
		0,                   // nonsense
		-5,                  // nonsense
		47_531_250 + 7,      // between schedule steps
		m.PriceAfter(listing, 10) - 3, // just off a step
	}
	for _, price := range cases {
		if _, err := m.DevalsForPrice(listing, price); !errors.Is(err, ErrPriceMismatch) {
			t.Fatalf("DevalsForPrice(%d): got %v, want ErrPriceMismatch", price, err)
		}
	}
}

func TestOpenWindow(t *testing.T) {
	m := mustModel(t, 72*time.Hour, 0.025)
	asOf := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	min, max := m.OpenWindow(2, asOf)
	if want := asOf.Add(-3 * 72 * time.Hour); !min.Equal(want) {
		t.Fatalf("min = %v, want %v", min, want)
	}
	if want := asOf.Add(-2 * 72 * time.Hour); !max.Equal(want) {
		t.Fatalf("max = %v, want %v", max, want)
	}

	// Zero devals: the plot opened within the last interval.
	min, max = m.OpenWindow(0, asOf)
	if !max.Equal(asOf) {
		t.Fatalf("max for n=0 = %v, want %v", max, asOf)
	}
	if !min.Equal(asOf.Add(-72 * time.Hour)) {
		t.Fatalf("min for n=0 = %v, want %v", min, asOf.Add(-72*time.Hour))
	}
}
