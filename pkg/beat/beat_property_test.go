package beat

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDurationToBeatsProperty_Additive checks that splitting an elapsed
// duration into two pieces and converting each piece separately sums to the
// same beats as converting the whole duration at once — the decimal math
// must not introduce drift the way repeated float64 accumulation would.
func TestDurationToBeatsProperty_Additive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("DurationToBeats(a+b, bpm) == DurationToBeats(a, bpm) + DurationToBeats(b, bpm)", prop.ForAll(
		func(aMs, bMs int64, bpm int) bool {
			a := time.Duration(aMs) * time.Millisecond
			b := time.Duration(bMs) * time.Millisecond

			whole := DurationToBeats(a+b, bpm)
			parts := DurationToBeats(a, bpm).Add(DurationToBeats(b, bpm))

			return whole.Equal(parts)
		},
		gen.Int64Range(0, 10_000_000),
		gen.Int64Range(0, 10_000_000),
		gen.IntRange(1, 300),
	))

	properties.TestingRun(t)
}

// TestDurationToBeatsProperty_NonNegative checks that non-negative elapsed
// durations at positive bpm never yield negative beats.
func TestDurationToBeatsProperty_NonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("beats is never negative for non-negative input", prop.ForAll(
		func(ms int64, bpm int) bool {
			d := time.Duration(ms) * time.Millisecond
			return !DurationToBeats(d, bpm).IsNegative()
		},
		gen.Int64Range(0, 100_000_000),
		gen.IntRange(1, 300),
	))

	properties.TestingRun(t)
}
