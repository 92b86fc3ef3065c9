// Package driver runs the real-time tick loop that converts wall-clock
// elapsed time into beat deltas, drives the master sequencer, and invokes a
// sink with whatever is emitted.
package driver

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zurustar/beatkeeper/pkg/beat"
	"github.com/zurustar/beatkeeper/pkg/control"
	"github.com/zurustar/beatkeeper/pkg/inbox"
	"github.com/zurustar/beatkeeper/pkg/logger"
	"github.com/zurustar/beatkeeper/pkg/master"
)

// Sink receives the entries emitted by a single tick and the wall-clock
// instant the tick began computing them. It is called only when batch is
// non-empty, and must return promptly to stay within the tick budget.
type Sink[T any] func(batch []T, tickTime time.Time)

// Config holds the driver's construction-time configuration. Every field
// except InitialBpm is immutable after construction; bpm itself changes
// only through a SetBpm control message.
type Config[T any] struct {
	StartMode        master.StartMode
	ResetMode        master.ResetMode
	InitialBpm       int
	TickPeriod       time.Duration
	SyncPulseEnabled bool
	// SyncPulsePayload is fed through the sink, out of band from sequenced
	// emissions, every time the sync counter rolls over 1/24 beat.
	SyncPulsePayload T
}

// Driver owns the master sequencer and the tick loop exclusively; it is
// meant to run on a single dedicated goroutine, reached from the outside
// only through its Inbox.
type Driver[T any] struct {
	master *master.Master[T]
	inbox  *inbox.Inbox[T]
	sink   Sink[T]

	bpm              int
	tickPeriod       time.Duration
	syncPulseEnabled bool
	syncPulsePayload T
	syncCounter      decimal.Decimal

	lastTick time.Time
	started  bool

	now func() time.Time
}

// New constructs a Driver. ib is the inbox the ingress thread pushes into;
// sink is invoked once per tick with non-empty emissions.
func New[T any](cfg Config[T], ib *inbox.Inbox[T], sink Sink[T]) *Driver[T] {
	return &Driver[T]{
		master:           master.New[T](cfg.StartMode, cfg.ResetMode),
		inbox:            ib,
		sink:             sink,
		bpm:              cfg.InitialBpm,
		tickPeriod:       cfg.TickPeriod,
		syncPulseEnabled: cfg.SyncPulseEnabled,
		syncPulsePayload: cfg.SyncPulsePayload,
		syncCounter:      decimal.Zero,
		now:              time.Now,
	}
}

// Run blocks, ticking the driver at its configured tick period, until stop
// is closed.
func (d *Driver[T]) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		tickStart := d.now()
		d.Tick()

		workNs := d.now().Sub(tickStart)
		if workNs > d.tickPeriod {
			logger.GetLogger().Warn("tick overrun",
				"work_ns", workNs.Nanoseconds(),
				"tick_period_ns", d.tickPeriod.Nanoseconds())
			continue
		}
		sleepUntil(tickStart.Add(d.tickPeriod))
	}
}

// Tick runs exactly one iteration of the loop: measure elapsed time, drain
// the inbox, apply start/reset policy, tick the master, and invoke the
// sink. It does not sleep; callers that want the tick-period pacing use Run.
func (d *Driver[T]) Tick() {
	now := d.now()
	var elapsed time.Duration
	if d.started {
		elapsed = now.Sub(d.lastTick)
		if elapsed < 0 {
			logger.GetLogger().Warn("clock went backwards",
				"elapsed_ns", elapsed.Nanoseconds())
			elapsed = 0
		}
	}
	d.lastTick = now
	d.started = true

	// bpm is captured before the inbox drain: a SetBpm popped this
	// iteration takes effect starting next tick, not this one.
	bpmForThisTick := d.bpm

	resetRequested, hardStopRequested := d.applyInbox()

	if hardStopRequested {
		d.master.ForceWipe()
		return
	}

	d.master.StartCheck()
	if resetRequested {
		d.master.ForceReset()
	} else {
		d.master.ResetCheck()
	}

	deltaBeats := beat.DurationToBeats(elapsed, bpmForThisTick)
	emitted := d.master.Tick(deltaBeats)

	if d.syncPulseEnabled {
		d.emitSyncPulses(deltaBeats, now)
	}

	if len(emitted) > 0 {
		d.sink(emitted, now)
	}

	logger.GetLogger().Debug("tick",
		"elapsed_ns", elapsed.Nanoseconds(),
		"delta_beats", deltaBeats.String(),
		"emitted", len(emitted))
}

// applyInbox drains the inbox and applies every message to the master.
// The two request flags are returned for the caller to act on after the
// drain completes, so that a HardStop anywhere in the batch still wins
// deterministically regardless of message order within the same drain.
func (d *Driver[T]) applyInbox() (resetRequested, hardStopRequested bool) {
	for _, msg := range d.inbox.Drain() {
		switch msg.Kind {
		case control.KindSetBpm:
			if msg.Bpm > 0 {
				d.bpm = msg.Bpm
			}
		case control.KindReset:
			resetRequested = true
		case control.KindHardStop:
			hardStopRequested = true
		case control.KindEndAfterFinish:
			d.master.EndAfterFinish()
		case control.KindQueue:
			d.applyQueue(msg.Queue)
		case control.KindBatchQueue:
			for _, payload := range msg.BatchQueue {
				d.applyQueue(payload)
			}
		}
	}
	return resetRequested, hardStopRequested
}

func (d *Driver[T]) applyQueue(payload control.QueuePayload[T]) {
	d.master.Queue(payload.Alias, payload.Entries, payload.EndBeat, payload.OneShot)
}

// emitSyncPulses feeds SyncPulsePayload through the sink once for every
// 1/24 beat the counter accumulates this tick, preserving residual phase
// by subtracting rather than resetting.
func (d *Driver[T]) emitSyncPulses(deltaBeats decimal.Decimal, now time.Time) {
	d.syncCounter = d.syncCounter.Add(deltaBeats)
	for d.syncCounter.GreaterThanOrEqual(beat.SyncPulseInterval) {
		d.syncCounter = d.syncCounter.Sub(beat.SyncPulseInterval)
		d.sink([]T{d.syncPulsePayload}, now)
	}
}
