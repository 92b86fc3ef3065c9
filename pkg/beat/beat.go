// Package beat converts wall-clock durations into musical beats using
// exact decimal arithmetic. Floating point accumulation over thousands of
// driver ticks drifts audibly, so every quantity on the beat axis is a
// decimal.Decimal, never a float64.
package beat

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Division by sixty never needs more than this many fractional digits to
	// stay inaudibly precise at any realistic tick rate.
	decimal.DivisionPrecision = 32
}

// SixtySeconds is the number of seconds in a minute, as used by the bpm-to-beats conversion.
var SixtySeconds = decimal.NewFromInt(60)

// SyncPulseInterval is 1/24th of a beat: the nominal MIDI-clock resolution
// the sync-pulse emitter fires at. The quotient is truncated to 32
// fractional digits, so 24 intervals never add up to more than one beat.
var SyncPulseInterval, _ = decimal.NewFromInt(1).QuoRem(decimal.NewFromInt(24), 32)

// DurationToBeats converts an elapsed wall-clock duration into a beat delta
// at the given tempo: Δbeats = Δt_seconds × (bpm / 60).
//
// bpm must be positive; callers (the inbox/driver boundary) are responsible
// for rejecting non-positive bpm before it reaches here. A non-positive
// duration yields zero beats rather than going negative.
func DurationToBeats(elapsed time.Duration, bpm int) decimal.Decimal {
	if elapsed <= 0 || bpm <= 0 {
		return decimal.Zero
	}

	// elapsed.Nanoseconds() as a decimal with nine fractional digits gives an
	// exact seconds value — no float64 round-trip anywhere in this path.
	seconds := decimal.New(elapsed.Nanoseconds(), -9)
	beatsPerSecond := decimal.NewFromInt(int64(bpm)).Div(SixtySeconds)

	return seconds.Mul(beatsPerSecond)
}
