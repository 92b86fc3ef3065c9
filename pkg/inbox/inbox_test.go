package inbox

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zurustar/beatkeeper/pkg/control"
	"github.com/zurustar/beatkeeper/pkg/sequencer"
)

func TestPushAndDrainPreservesOrder(t *testing.T) {
	ib := New[int](4)

	for i := 0; i < 3; i++ {
		if !ib.Push(control.SetBpm[int](120 + i)) {
			t.Fatalf("Push(%d) = false, want true", i)
		}
	}

	drained := ib.Drain()
	if len(drained) != 3 {
		t.Fatalf("Drain() returned %d messages, want 3", len(drained))
	}
	for i, msg := range drained {
		if msg.Bpm != 120+i {
			t.Errorf("drained[%d].Bpm = %d, want %d", i, msg.Bpm, 120+i)
		}
	}

	if drained := ib.Drain(); drained != nil {
		t.Fatalf("second Drain() = %v, want nil", drained)
	}
}

func TestPushFailsWhenFull(t *testing.T) {
	ib := New[int](2)

	if !ib.Push(control.Reset[int]()) {
		t.Fatal("Push(1) = false, want true")
	}
	if !ib.Push(control.Reset[int]()) {
		t.Fatal("Push(2) = false, want true")
	}
	if ib.Push(control.Reset[int]()) {
		t.Fatal("Push(3) = true, want false (inbox full)")
	}

	if got := ib.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
}

func TestQueuePayloadRoundTripsThroughPushAndDrain(t *testing.T) {
	ib := New[string](1)

	payload := control.QueuePayload[string]{
		Alias: "lead",
		Entries: []sequencer.Entry[string]{
			sequencer.NewEntry(decimal.NewFromInt(0), "kick"),
			sequencer.NewEntry(decimal.NewFromFloat(1.5), "snare"),
		},
		EndBeat: decimal.NewFromInt(4),
		OneShot: true,
	}

	if !ib.Push(control.Queue(payload)) {
		t.Fatal("Push(Queue) = false, want true")
	}

	drained := ib.Drain()
	if len(drained) != 1 {
		t.Fatalf("Drain() returned %d messages, want 1", len(drained))
	}

	got := drained[0].Queue
	if got.Alias != payload.Alias {
		t.Errorf("Alias = %q, want %q", got.Alias, payload.Alias)
	}
	if !reflect.DeepEqual(got.Entries, payload.Entries) {
		t.Errorf("Entries = %v, want %v", got.Entries, payload.Entries)
	}
	if !got.EndBeat.Equal(payload.EndBeat) {
		t.Errorf("EndBeat = %s, want %s", got.EndBeat, payload.EndBeat)
	}
	if got.OneShot != payload.OneShot {
		t.Errorf("OneShot = %v, want %v", got.OneShot, payload.OneShot)
	}
}

func TestNewUsesDefaultCapacityForNonPositive(t *testing.T) {
	ib := New[int](0)
	if got := ib.Cap(); got != DefaultCapacity {
		t.Fatalf("Cap() = %d, want %d", got, DefaultCapacity)
	}

	ib = New[int](-5)
	if got := ib.Cap(); got != DefaultCapacity {
		t.Fatalf("Cap() = %d, want %d", got, DefaultCapacity)
	}
}

func TestDrainAfterPushFrees(t *testing.T) {
	ib := New[int](1)

	if !ib.Push(control.HardStop[int]()) {
		t.Fatal("Push(1) = false, want true")
	}
	if ib.Push(control.HardStop[int]()) {
		t.Fatal("Push(2) = true, want false")
	}

	drained := ib.Drain()
	if len(drained) != 1 {
		t.Fatalf("Drain() returned %d messages, want 1", len(drained))
	}

	if !ib.Push(control.HardStop[int]()) {
		t.Fatal("Push after drain = false, want true")
	}
}
