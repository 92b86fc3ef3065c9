// Package master orchestrates a named collection of sequencers, applying
// start and reset policies across the whole set.
package master

import (
	"github.com/shopspring/decimal"

	"github.com/zurustar/beatkeeper/pkg/sequencer"
)

// StartMode decides when newly queued (inactive) sequencers are admitted
// into the active set.
type StartMode int

const (
	// Immediate admits inactive sequencers on the very next start check.
	Immediate StartMode = iota
	// WithNearest waits until any active sequencer finishes, or the active set is empty.
	WithNearest
	// WithLongest waits until the longest-running active sequencer finishes, or the active set is empty.
	WithLongest
)

// ResetMode decides how finished active sequencers are reset.
type ResetMode int

const (
	// Individual resets each finished sequencer independently, on its own phase.
	Individual ResetMode = iota
	// Longest holds every finished sequencer until the longest-by-end-beat
	// sequencer also finishes, then resets them all phase-aligned.
	Longest
)

// Master orchestrates a set of sequencers keyed by alias, partitioned into
// active (ticking) and inactive (awaiting admission). An alias is in
// exactly one of the two partitions, never both.
//
// Like Sequencer, Master is not safe for concurrent use; it is owned
// exclusively by the driver thread.
type Master[T any] struct {
	active      map[string]*sequencer.Sequencer[T]
	activeOrder []string // insertion order, for deterministic "longest" tie-breaks

	inactive      map[string]*sequencer.Sequencer[T]
	inactiveOrder []string // insertion order, preserved across a batch admission into active

	startMode StartMode
	resetMode ResetMode
}

// New creates an empty Master with the given policies.
func New[T any](startMode StartMode, resetMode ResetMode) *Master[T] {
	return &Master[T]{
		active:    make(map[string]*sequencer.Sequencer[T]),
		inactive:  make(map[string]*sequencer.Sequencer[T]),
		startMode: startMode,
		resetMode: resetMode,
	}
}

// Queue replaces the queued buffer for alias. If alias already exists in
// either partition, the call is forwarded to that sequencer's Queue and its
// FinishAction is updated to match oneShot. Otherwise a new sequencer is
// created in the inactive partition.
func (m *Master[T]) Queue(alias string, entries []sequencer.Entry[T], endBeat decimal.Decimal, oneShot bool) {
	finishAction := sequencer.Reset
	if oneShot {
		finishAction = sequencer.Wipe
	}

	if seq, ok := m.active[alias]; ok {
		seq.Queue(entries, endBeat)
		seq.FinishAction = finishAction
		return
	}
	if seq, ok := m.inactive[alias]; ok {
		seq.Queue(entries, endBeat)
		seq.FinishAction = finishAction
		return
	}

	seq := sequencer.New[T]()
	seq.Queue(entries, endBeat)
	seq.FinishAction = finishAction
	m.inactive[alias] = seq
	m.inactiveOrder = append(m.inactiveOrder, alias)
}

// Tick advances every active sequencer by deltaBeats and returns the
// concatenation of their emissions. Inactive sequencers do not advance.
func (m *Master[T]) Tick(deltaBeats decimal.Decimal) []T {
	var emitted []T
	for _, alias := range m.activeOrder {
		seq := m.active[alias]
		emitted = append(emitted, seq.Tick(deltaBeats)...)
	}
	return emitted
}

// StartCheck admits all of the inactive set into active, atomically, if the
// configured start policy permits it. There are no partial admissions.
func (m *Master[T]) StartCheck() {
	if len(m.inactive) == 0 {
		return
	}

	admit := false
	startOvershoot := decimal.Zero

	switch m.startMode {
	case Immediate:
		admit = true
	case WithNearest:
		admit = len(m.active) == 0 || m.anyActiveFinished()
	case WithLongest:
		_, longest := m.longestActive()
		if longest == nil {
			admit = true
		} else if longest.IsFinished() {
			admit = true
			startOvershoot = longest.Overshoot()
		}
	}

	if !admit {
		return
	}

	for _, alias := range m.inactiveOrder {
		seq := m.inactive[alias]
		seq.Reset(startOvershoot)
		m.active[alias] = seq
		m.activeOrder = append(m.activeOrder, alias)
	}
	m.inactive = make(map[string]*sequencer.Sequencer[T])
	m.inactiveOrder = nil
}

// ResetCheck resets finished active sequencers per the reset policy,
// removing any whose FinishAction is Wipe instead of looping them.
func (m *Master[T]) ResetCheck() {
	switch m.resetMode {
	case Individual:
		for _, alias := range append([]string(nil), m.activeOrder...) {
			seq := m.active[alias]
			if !seq.IsFinished() {
				continue
			}
			if seq.FinishAction == sequencer.Wipe {
				m.remove(alias)
				continue
			}
			seq.Reset(seq.Overshoot())
		}
	case Longest:
		_, longest := m.longestActive()
		if longest == nil || !longest.IsFinished() {
			return
		}
		longestOvershoot := longest.Overshoot()

		for _, alias := range append([]string(nil), m.activeOrder...) {
			seq := m.active[alias]
			if !seq.IsFinished() {
				continue
			}
			if seq.FinishAction == sequencer.Wipe {
				m.remove(alias)
				continue
			}
			seq.Reset(longestOvershoot)
		}
	}
}

// ForceReset resets every active sequencer to reset(0), regardless of
// whether it has finished.
func (m *Master[T]) ForceReset() {
	for _, seq := range m.active {
		seq.Reset(decimal.Zero)
	}
}

// ForceWipe drops every sequencer, active and inactive.
func (m *Master[T]) ForceWipe() {
	m.active = make(map[string]*sequencer.Sequencer[T])
	m.activeOrder = nil
	m.inactive = make(map[string]*sequencer.Sequencer[T])
	m.inactiveOrder = nil
}

// EndAfterFinish marks every active sequencer one-shot: it will be removed
// rather than looped the next time it finishes.
func (m *Master[T]) EndAfterFinish() {
	for _, seq := range m.active {
		seq.FinishAction = sequencer.Wipe
	}
}

// ActiveCount returns the number of currently active sequencers.
func (m *Master[T]) ActiveCount() int {
	return len(m.active)
}

// InactiveCount returns the number of currently inactive sequencers.
func (m *Master[T]) InactiveCount() int {
	return len(m.inactive)
}

func (m *Master[T]) anyActiveFinished() bool {
	for _, seq := range m.active {
		if seq.IsFinished() {
			return true
		}
	}
	return false
}

// longestActive returns the active sequencer with the largest end beat,
// breaking ties by insertion order (first inserted wins). Returns nil if
// there are no active sequencers.
func (m *Master[T]) longestActive() (string, *sequencer.Sequencer[T]) {
	var longestAlias string
	var longest *sequencer.Sequencer[T]

	for _, alias := range m.activeOrder {
		seq := m.active[alias]
		if longest == nil || seq.EndBeat().GreaterThan(longest.EndBeat()) {
			longestAlias, longest = alias, seq
		}
	}
	return longestAlias, longest
}

func (m *Master[T]) remove(alias string) {
	delete(m.active, alias)
	for i, a := range m.activeOrder {
		if a == alias {
			m.activeOrder = append(m.activeOrder[:i], m.activeOrder[i+1:]...)
			break
		}
	}
}
