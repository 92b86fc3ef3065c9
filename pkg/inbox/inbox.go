// Package inbox implements the bounded single-producer/single-consumer
// channel carrying control.Message values from the network ingress (out of
// scope) into the driver loop.
package inbox

import (
	"github.com/zurustar/beatkeeper/pkg/control"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 100

// Inbox is a bounded SPSC queue. Push is non-blocking: a full inbox reports
// failure to the caller rather than blocking the producer. Drain is
// non-blocking and pops the entire backlog present at the time of the call.
//
// A Go buffered channel already gives SPSC semantics with a fixed capacity;
// Inbox only adds the non-blocking push/drain contract on top of it.
type Inbox[T any] struct {
	messages chan control.Message[T]
}

// New creates an Inbox with the given capacity. capacity <= 0 uses
// DefaultCapacity.
func New[T any](capacity int) *Inbox[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Inbox[T]{messages: make(chan control.Message[T], capacity)}
}

// Push attempts to enqueue msg without blocking. It returns false if the
// inbox is full; the caller is responsible for logging and dropping the
// message.
func (ib *Inbox[T]) Push(msg control.Message[T]) bool {
	select {
	case ib.messages <- msg:
		return true
	default:
		return false
	}
}

// Drain pops every message currently queued, in push order, without
// blocking. It returns nil if the inbox was empty.
func (ib *Inbox[T]) Drain() []control.Message[T] {
	var drained []control.Message[T]
	for {
		select {
		case msg := <-ib.messages:
			drained = append(drained, msg)
		default:
			return drained
		}
	}
}

// Len reports the number of messages currently queued.
func (ib *Inbox[T]) Len() int {
	return len(ib.messages)
}

// Cap reports the inbox's fixed capacity.
func (ib *Inbox[T]) Cap() int {
	return cap(ib.messages)
}
