package powerup

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestPickMapsDrawOntoBuckets(t *testing.T) {
	t.Parallel()

	items := []Weighted[string]{
		{Value: "a", Weight: 1},
		{Value: "b", Weight: 2},
		{Value: "c", Weight: 1},
	}

	cases := []struct {
		name string
		draw float64
		want string
	}{
		{name: "zero draw lands in first bucket", draw: 0, want: "a"},
		{name: "quarter boundary still first bucket", draw: 0.24, want: "a"},
		{name: "middle of second bucket", draw: 0.5, want: "b"},
		{name: "start of third bucket", draw: 0.76, want: "c"},
		{name: "upper edge", draw: 0.999999, want: "c"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Pick(items, tc.draw)
			if !ok {
				t.Fatalf("Pick(%v) reported no selection", tc.draw)
			}
			if got != tc.want {
				t.Fatalf("Pick(%v) = %q, want %q", tc.draw, got, tc.want)
			}
		})
	}
}

func TestPickSkipsNonPositiveWeights(t *testing.T) {
	t.Parallel()

	items := []Weighted[string]{
		{Value: "dead", Weight: 0},
		{Value: "live", Weight: 1},
		{Value: "negative", Weight: -3},
	}
	for _, draw := range []float64{0, 0.5, 0.999} {
		got, ok := Pick(items, draw)
		if !ok {
			t.Fatalf("Pick(draw=%v) reported no selection", draw)
		}
		if got != "live" {
			t.Fatalf("Pick(draw=%v) = %q, want %q", draw, got, "live")
		}
	}
}

func TestPickEmptyPool(t *testing.T) {
	t.Parallel()

	if _, ok := Pick[string](nil, 0.5); ok {
		t.Fatalf("Pick on nil list reported a selection")
	}
	items := []Weighted[string]{
		{Value: "a", Weight: 0},
		{Value: "b", Weight: -1},
	}
	if _, ok := Pick(items, 0.5); ok {
		t.Fatalf("Pick with no positive weight reported a selection")
	}
}

func TestPickFrequencyConvergesToWeightShares(t *testing.T) {
	t.Parallel()

	items := []Weighted[string]{
		{Value: "rare", Weight: 1},
		{Value: "uncommon", Weight: 3},
		{Value: "common", Weight: 6},
	}

	rng := rand.New(rand.NewPCG(7, 13))
	const draws = 100_000
	counts := make(map[string]int, len(items))
	for i := 0; i < draws; i++ {
		value, ok := Pick(items, rng.Float64())
		if !ok {
			t.Fatalf("draw %d reported no selection", i)
		}
		counts[value]++
	}

	for _, item := range items {
		want := item.Weight / 10.0
		got := float64(counts[item.Value]) / draws
		if math.Abs(got-want) > 0.01 {
			t.Fatalf("%s selected with frequency %.4f, want %.4f ±0.01", item.Value, got, want)
		}
	}
}

func TestPickRoundingFallsBackToLastBucket(t *testing.T) {
	t.Parallel()

	// Weights whose float sum accumulates error; a draw at the extreme top
	// must still resolve to the final positive bucket.
	items := []Weighted[int]{
		{Value: 1, Weight: 0.1},
		{Value: 2, Weight: 0.1},
		{Value: 3, Weight: 0.1},
	}
	got, ok := Pick(items, math.Nextafter(1, 0))
	if !ok {
		t.Fatalf("Pick at upper edge reported no selection")
	}
	if got != 3 {
		t.Fatalf("Pick at upper edge = %d, want 3", got)
	}
}
