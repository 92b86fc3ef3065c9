// Package control defines the tagged control-message taxonomy that flows
// from the network ingress (out of scope) into the driver loop through the
// inbox (pkg/inbox). Parsing the wire format into these messages is the
// ingress's job; the core only ever sees already-typed values.
package control

import (
	"github.com/shopspring/decimal"

	"github.com/zurustar/beatkeeper/pkg/sequencer"
)

// Kind tags which variant a Message holds.
type Kind int

const (
	// KindHardStop drops all sequencers, active and inactive.
	KindHardStop Kind = iota
	// KindReset forces every active sequencer to reset(0) on the next tick.
	KindReset
	// KindSetBpm changes the tempo used by subsequent ticks.
	KindSetBpm
	// KindEndAfterFinish marks every active sequencer one-shot.
	KindEndAfterFinish
	// KindQueue replaces the queued buffer for one alias.
	KindQueue
	// KindBatchQueue applies several Queue payloads as one inbox drain.
	KindBatchQueue
)

// QueuePayload describes a replacement sequence for one sequencer alias.
type QueuePayload[T any] struct {
	Alias   string
	Entries []sequencer.Entry[T]
	EndBeat decimal.Decimal
	OneShot bool
}

// Message is a tagged union of the control operations the driver accepts.
// Only the field(s) relevant to Kind are populated; the zero value of the
// others is ignored.
type Message[T any] struct {
	Kind       Kind
	Bpm        int
	Queue      QueuePayload[T]
	BatchQueue []QueuePayload[T]
}

// HardStop constructs a KindHardStop message.
func HardStop[T any]() Message[T] {
	return Message[T]{Kind: KindHardStop}
}

// Reset constructs a KindReset message.
func Reset[T any]() Message[T] {
	return Message[T]{Kind: KindReset}
}

// SetBpm constructs a KindSetBpm message. A bpm that is not positive is a
// no-op once it reaches the driver; the message itself carries whatever
// value the caller gives it.
func SetBpm[T any](bpm int) Message[T] {
	return Message[T]{Kind: KindSetBpm, Bpm: bpm}
}

// EndAfterFinish constructs a KindEndAfterFinish message.
func EndAfterFinish[T any]() Message[T] {
	return Message[T]{Kind: KindEndAfterFinish}
}

// Queue constructs a KindQueue message for a single alias.
func Queue[T any](payload QueuePayload[T]) Message[T] {
	return Message[T]{Kind: KindQueue, Queue: payload}
}

// BatchQueue constructs a KindBatchQueue message applying several payloads
// atomically from the driver's perspective (processed contiguously within
// one inbox drain — see pkg/driver).
func BatchQueue[T any](payloads []QueuePayload[T]) Message[T] {
	return Message[T]{Kind: KindBatchQueue, BatchQueue: payloads}
}

// EntriesFromRelative converts a list of (contents, beats-until-next)
// relative delays into absolute, ascending-order entries — the prefix-sum
// conversion the original ingress performed
// before handing sequences to the core (original_source/sequencing_daemon.rs
// to_sequence). Only the entries are returned; the total end beat is not
// computed here. Kept here as a small pure utility for ingress adapters;
// the core itself only ever receives already-absolute entries.
func EntriesFromRelative[T any](contents []T, relativeBeats []decimal.Decimal) []sequencer.Entry[T] {
	entries := make([]sequencer.Entry[T], 0, len(contents))
	timeline := decimal.Zero
	for i, c := range contents {
		entries = append(entries, sequencer.NewEntry(timeline, c))
		if i < len(relativeBeats) {
			timeline = timeline.Add(relativeBeats[i])
		}
	}
	return entries
}
