// Package flowstats counts the packets of every source/destination pair and
// turns the counters into the delivery metrics of an experiment.
package flowstats

import (
	"fmt"

	"github.com/sarchlab/wsnsim/sim"
	"github.com/sarchlab/wsnsim/topology"
)

// FlowID identifies the traffic from one node to another.
type FlowID struct {
	Src topology.NodeID `json:"src"`
	Dst topology.NodeID `json:"dst"`
}

func (id FlowID) String() string {
	return fmt.Sprintf("%d->%d", id.Src, id.Dst)
}

// Flow holds the counters of one flow.
type Flow struct {
	ID FlowID `json:"id"`

	TxPackets   uint64 `json:"tx_packets"`
	TxBytes     uint64 `json:"tx_bytes"`
	RxPackets   uint64 `json:"rx_packets"`
	RxBytes     uint64 `json:"rx_bytes"`
	LostPackets uint64 `json:"lost_packets"`

	// DelaySum only accumulates the delay of delivered packets.
	DelaySum sim.VTimeInSec `json:"delay_sum"`

	// JitterSum accumulates the delay difference between consecutive
	// delivered packets.
	JitterSum sim.VTimeInSec `json:"jitter_sum"`
	LastDelay sim.VTimeInSec `json:"last_delay"`
}

// AvgDelay returns the mean delay of the delivered packets of the flow.
func (f Flow) AvgDelay() sim.VTimeInSec {
	if f.RxPackets == 0 {
		return 0
	}

	return f.DelaySum / sim.VTimeInSec(f.RxPackets)
}

// PDR returns the delivery ratio of the flow.
func (f Flow) PDR() float64 {
	if f.TxPackets == 0 {
		return 0
	}

	return float64(f.RxPackets) / float64(f.TxPackets)
}
