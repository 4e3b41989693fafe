package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	// Schedule runs the action after the given delay. The returned event can
	// be used to cancel the action.
	Schedule(delay VTimeInSec, action Action) (*Event, error)

	// ScheduleLabeled is the same as Schedule, but tags the event with a
	// label that hooks can observe.
	ScheduleLabeled(delay VTimeInSec, label string, action Action) (*Event, error)

	// Cancel prevents a scheduled event from firing. Canceling an event that
	// has already fired is a no-op.
	Cancel(evt *Event)
}

// A SimulationEndHandler is a handler that is called after the simulation ends.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run will process all the events until the queue is empty.
	Run() error

	// RunUntil processes events until the queue is empty or the next event
	// happens after the stop time.
	RunUntil(stop VTimeInSec) error

	// Pending returns the number of events that are scheduled and not
	// canceled.
	Pending() int

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()

	// RegisterSimulationEndHandler registers a handler that perform some
	// actions after the simulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler
	Finished()
}
