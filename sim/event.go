package sim

import (
	"errors"
)

// VTimeInSec defines the time in the simulated space in the unit of second
type VTimeInSec float64

// ErrInvalidSchedule is returned when an event is scheduled with a negative
// or otherwise unusable delay.
var ErrInvalidSchedule = errors.New("invalid schedule")

// An Action is the callback that runs when an event fires.
type Action func()

// An Event is something going to happen in the future.
//
// Events are created by the engine when an action is scheduled. Apart from
// cancellation, an event does not change after it is scheduled.
type Event struct {
	ID string

	time   VTimeInSec
	seq    uint64
	label  string
	action Action

	canceled bool
	fired    bool
}

// Time returns the time that the event is going to happen.
func (e *Event) Time() VTimeInSec {
	return e.time
}

// Seq returns the insertion sequence number of the event. Events with the
// same time fire in the order of their sequence numbers.
func (e *Event) Seq() uint64 {
	return e.seq
}

// Label returns the tag given when the event was scheduled.
func (e *Event) Label() string {
	return e.label
}

// IsCanceled tells if the event has been canceled.
func (e *Event) IsCanceled() bool {
	return e.canceled
}

// IsFired tells if the event's action has already run.
func (e *Event) IsFired() bool {
	return e.fired
}
