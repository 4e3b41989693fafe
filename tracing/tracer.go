// Package tracing records the events fired by an engine.
package tracing

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sarchlab/wsnsim/datarecording"
	"github.com/sarchlab/wsnsim/sim"
)

// TraceTable is the table that receives the event records.
const TraceTable = "event_trace"

// EventRecord describes one fired event.
type EventRecord struct {
	Seq   uint64
	Time  float64
	ID    string
	Label string
}

// EventTracer is a hook that keeps a record of every event fired by the
// engine it is attached to. Records are kept in memory and, when a recorder is
// given, also written into the event_trace table.
type EventTracer struct {
	mu       sync.Mutex
	records  []EventRecord
	recorder datarecording.DataRecorder
	noMemory bool
}

// NewEventTracer creates a tracer that keeps its records in memory.
func NewEventTracer() *EventTracer {
	return &EventTracer{}
}

// WithRecorder makes the tracer write its records into the recorder as well.
// The trace table is created right away.
func (t *EventTracer) WithRecorder(
	recorder datarecording.DataRecorder,
) *EventTracer {
	recorder.CreateTable(TraceTable, EventRecord{})
	t.recorder = recorder

	return t
}

// WithoutMemory stops the tracer from keeping the records in memory. It is
// only useful together with a recorder.
func (t *EventTracer) WithoutMemory() *EventTracer {
	t.noMemory = true
	return t
}

// Func records the event before it is handled.
func (t *EventTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(*sim.Event)
	if !ok {
		return
	}

	record := EventRecord{
		Seq:   evt.Seq(),
		Time:  float64(evt.Time()),
		ID:    evt.ID,
		Label: evt.Label(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.noMemory {
		t.records = append(t.records, record)
	}

	if t.recorder != nil {
		t.recorder.InsertData(TraceTable, record)
	}
}

// Records returns a copy of the records kept in memory.
func (t *EventTracer) Records() []EventRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := make([]EventRecord, len(t.records))
	copy(records, t.records)

	return records
}

// Len returns the number of records kept in memory.
func (t *EventTracer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.records)
}

// CollectTrace attaches the tracer to a hookable object, usually an engine.
// A tracer can only be attached once.
func CollectTrace(domain sim.Hookable, tracer *EventTracer) {
	defer func() {
		if r := recover(); r != nil {
			panic(fmt.Sprintf("%s already has tracer %s",
				reflect.TypeOf(domain), reflect.TypeOf(tracer)))
		}
	}()

	domain.AcceptHook(tracer)
}
