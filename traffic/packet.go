// Package traffic generates the periodic sensor-to-sink traffic of an
// experiment.
package traffic

import (
	"fmt"
	"net/netip"

	"github.com/sarchlab/wsnsim/flowstats"
	"github.com/sarchlab/wsnsim/sim"
	"github.com/sarchlab/wsnsim/topology"
)

// A Packet is a datagram sent by a sensor to the sink.
type Packet struct {
	Seq     uint64
	Size    int
	Src     topology.NodeID
	Dst     topology.NodeID
	SrcAddr netip.Addr
	DstAddr netip.Addr
	Port    uint16
	SentAt  sim.VTimeInSec
}

// FlowID returns the flow that the packet belongs to.
func (p Packet) FlowID() flowstats.FlowID {
	return flowstats.FlowID{Src: p.Src, Dst: p.Dst}
}

func (p Packet) String() string {
	return fmt.Sprintf("%s -> %s:%d #%d (%d bytes)",
		p.SrcAddr, p.DstAddr, p.Port, p.Seq, p.Size)
}

// FlowRecorder receives the packet bookkeeping of the traffic generator.
type FlowRecorder interface {
	RecordTx(id flowstats.FlowID, bytes int)
	RecordRx(id flowstats.FlowID, bytes int, delay sim.VTimeInSec)
	RecordLoss(id flowstats.FlowID)
}

// Scheduler is the part of the engine that the applications use.
type Scheduler interface {
	sim.TimeTeller
	sim.EventScheduler
}

// scheduleAt schedules an action at an absolute time.
func scheduleAt(
	s Scheduler,
	at sim.VTimeInSec,
	label string,
	action sim.Action,
) (*sim.Event, error) {
	return s.ScheduleLabeled(at-s.CurrentTime(), label, action)
}
