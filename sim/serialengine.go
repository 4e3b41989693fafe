package sim

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
)

// A SerialEngine is an Engine that always run events one after another.
type SerialEngine struct {
	*HookableBase

	timeLock sync.RWMutex
	time     VTimeInSec
	queue    EventQueue

	idGenerator IDGenerator
	nextSeq     atomic.Uint64
	pending     atomic.Int64

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)

	e.HookableBase = NewHookableBase()
	e.queue = NewEventQueue()
	e.idGenerator = NewSequentialIDGenerator()

	return e
}

// WithIDGenerator replaces the generator that names the scheduled events.
func (e *SerialEngine) WithIDGenerator(g IDGenerator) *SerialEngine {
	e.idGenerator = g
	return e
}

// Schedule registers an action to happen after the given delay.
func (e *SerialEngine) Schedule(delay VTimeInSec, action Action) (*Event, error) {
	return e.ScheduleLabeled(delay, "", action)
}

// ScheduleLabeled registers an action to happen after the given delay and
// tags the event with a label.
func (e *SerialEngine) ScheduleLabeled(
	delay VTimeInSec,
	label string,
	action Action,
) (*Event, error) {
	d := float64(delay)
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return nil, fmt.Errorf("%w: delay %v", ErrInvalidSchedule, d)
	}

	if action == nil {
		return nil, fmt.Errorf("%w: nil action", ErrInvalidSchedule)
	}

	evt := &Event{
		ID:     e.idGenerator.Generate(),
		time:   e.readNow() + delay,
		seq:    e.nextSeq.Add(1),
		label:  label,
		action: action,
	}

	e.queue.Push(evt)
	e.pending.Add(1)

	return evt, nil
}

// Cancel prevents the event from firing. It does nothing if the event has
// already fired or has already been canceled.
func (e *SerialEngine) Cancel(evt *Event) {
	if evt == nil || evt.fired || evt.canceled {
		return
	}

	evt.canceled = true
	e.pending.Add(-1)
}

// Pending returns the number of events that are still going to fire.
func (e *SerialEngine) Pending() int {
	return int(e.pending.Load())
}

func (e *SerialEngine) readNow() VTimeInSec {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()
	return t
}

func (e *SerialEngine) writeNow(t VTimeInSec) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// Run processes all the events scheduled in the SerialEngine
func (e *SerialEngine) Run() error {
	return e.RunUntil(VTimeInSec(math.Inf(1)))
}

// RunUntil processes the events in time order. It returns when there is no
// more event or when the next event is later than the stop time. Events
// scheduled while running are processed in the same call if they are not
// later than the stop time.
func (e *SerialEngine) RunUntil(stop VTimeInSec) error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		e.pauseLock.Lock()

		evt := e.queue.Peek()
		if evt == nil || evt.time > stop {
			e.pauseLock.Unlock()
			return nil
		}

		e.queue.Pop()

		if evt.canceled {
			e.pauseLock.Unlock()
			continue
		}

		e.fire(evt)

		e.pauseLock.Unlock()
	}
}

func (e *SerialEngine) fire(evt *Event) {
	now := e.readNow()
	if evt.time < now {
		log.Panicf(
			"cannot run event in the past, evt %s (%s) @ %.10f, now %.10f",
			evt.ID, evt.label, evt.time, now,
		)
	}

	e.writeNow(evt.time)

	evt.fired = true
	e.pending.Add(-1)

	hookCtx := HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	evt.action()

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)
}

// Pause prevents the SerialEngine to trigger more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// IsPaused tells if the engine is currently paused.
func (e *SerialEngine) IsPaused() bool {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	return e.isPaused
}

// CurrentTime returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	return e.readNow()
}

// RegisterSimulationEndHandler registers a handler to be called by Finished.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished should be called after the simulation ends. This function
// calls all the registered SimulationEndHandler.
func (e *SerialEngine) Finished() {
	now := e.readNow()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}
}
