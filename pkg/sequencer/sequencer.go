// Package sequencer implements a single sequenced track: a beat cursor
// ticking through a sorted list of entries, with a queued replacement
// buffer that is swapped in on reset.
package sequencer

import (
	"github.com/shopspring/decimal"
)

// FinishAction decides what happens to a sequencer when it finishes a loop.
type FinishAction int

const (
	// Reset loops the sequencer: a finished sequencer is reset and plays again.
	Reset FinishAction = iota
	// Wipe removes the sequencer instead of looping it (one-shot playback).
	Wipe
)

// Entry is a single scheduled message: a trigger beat and opaque contents.
// Entries are immutable after construction.
type Entry[T any] struct {
	TriggerBeat decimal.Decimal
	Contents    T
}

// NewEntry constructs an Entry.
func NewEntry[T any](triggerBeat decimal.Decimal, contents T) Entry[T] {
	return Entry[T]{TriggerBeat: triggerBeat, Contents: contents}
}

// Sequencer is a single track: an active sequence being ticked through, a
// queued replacement sequence, and the beat-axis cursor state.
//
// A Sequencer is not safe for concurrent use; in beatkeeper it is owned
// exclusively by the driver thread and reached from the network front end
// only through the inbox (see pkg/inbox).
type Sequencer[T any] struct {
	activeSequence []Entry[T]
	queuedSequence []Entry[T]

	currentBeat    decimal.Decimal
	processedBeats *decimal.Decimal
	endBeat        decimal.Decimal
	queueEndBeat   decimal.Decimal

	// FinishAction is read by the master sequencer to decide whether this
	// track loops (Reset) or is removed (Wipe) the next time it finishes.
	FinishAction FinishAction
}

// New creates an empty, unqueued sequencer at beat zero.
func New[T any]() *Sequencer[T] {
	return &Sequencer[T]{
		currentBeat:  decimal.Zero,
		endBeat:      decimal.Zero,
		queueEndBeat: decimal.Zero,
	}
}

// Queue replaces the queued sequence and queue end beat. This has no effect
// on the currently playing loop until the next Reset. entries must already
// be sorted by TriggerBeat ascending — callers normalize before calling.
func (s *Sequencer[T]) Queue(entries []Entry[T], endBeat decimal.Decimal) {
	s.queuedSequence = entries
	s.queueEndBeat = endBeat
}

// Reset swaps the queued sequence into the active sequence, sets the cursor
// to overshoot (the beat amount already "spent" in the prior loop, credited
// forward to preserve phase), and clears processedBeats.
func (s *Sequencer[T]) Reset(overshoot decimal.Decimal) {
	s.currentBeat = overshoot
	s.processedBeats = nil
	s.activeSequence = s.queuedSequence
	s.endBeat = s.queueEndBeat
}

// Tick advances the cursor by deltaBeats and returns the contents of every
// entry whose TriggerBeat falls in (processedBeats, currentBeat] — the
// lower bound is -∞ when processedBeats is unset, so an entry at beat zero
// fires on the very first tick of a fresh loop regardless of how small that
// tick's delta is.
//
// A finished sequencer ticks to a no-op: it returns nil and leaves the
// cursor untouched, preventing unbounded growth of currentBeat.
func (s *Sequencer[T]) Tick(deltaBeats decimal.Decimal) []T {
	if s.IsFinished() {
		return nil
	}

	s.currentBeat = s.currentBeat.Add(deltaBeats)

	var emitted []T
	for _, entry := range s.activeSequence {
		if entry.TriggerBeat.GreaterThan(s.currentBeat) {
			continue
		}
		if s.processedBeats != nil && !entry.TriggerBeat.GreaterThan(*s.processedBeats) {
			continue
		}
		emitted = append(emitted, entry.Contents)
	}

	processed := s.currentBeat
	s.processedBeats = &processed

	return emitted
}

// IsFinished reports whether the cursor has reached or passed the end beat.
// It uses processedBeats when present (the value as of the end of the last
// tick) and falls back to currentBeat otherwise.
func (s *Sequencer[T]) IsFinished() bool {
	cursor := s.currentBeat
	if s.processedBeats != nil {
		cursor = *s.processedBeats
	}
	return !cursor.LessThan(s.endBeat)
}

// Overshoot returns how far currentBeat has passed endBeat, or zero if the
// sequencer has not finished (or finished exactly on the boundary). Used by
// the master sequencer to carry phase between loops under the Longest reset
// policy.
func (s *Sequencer[T]) Overshoot() decimal.Decimal {
	if s.currentBeat.GreaterThan(s.endBeat) {
		return s.currentBeat.Sub(s.endBeat)
	}
	return decimal.Zero
}

// EndBeat returns the exclusive upper bound of the currently active loop.
func (s *Sequencer[T]) EndBeat() decimal.Decimal {
	return s.endBeat
}

// CurrentBeat returns the current position of the beat cursor.
func (s *Sequencer[T]) CurrentBeat() decimal.Decimal {
	return s.currentBeat
}
