package flowstats

import (
	"log"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/wsnsim/sim"
)

// Monitor owns the flow table of an experiment.
//
// The counters are updated from event actions. The lock only matters for
// observers outside the engine, such as the HTTP monitor.
type Monitor struct {
	mu      sync.RWMutex
	simTime sim.VTimeInSec
	flows   []*Flow
	index   map[FlowID]int
}

// NewMonitor creates an empty flow table. The simulation time is the
// duration used to compute the throughput.
func NewMonitor(simTime sim.VTimeInSec) *Monitor {
	return &Monitor{
		simTime: simTime,
		index:   make(map[FlowID]int),
	}
}

// SimTime returns the duration used to compute the throughput.
func (m *Monitor) SimTime() sim.VTimeInSec {
	return m.simTime
}

func (m *Monitor) flowOrCreate(id FlowID) *Flow {
	if i, ok := m.index[id]; ok {
		return m.flows[i]
	}

	f := &Flow{ID: id}
	m.index[id] = len(m.flows)
	m.flows = append(m.flows, f)

	return f
}

func (m *Monitor) existingFlow(id FlowID) *Flow {
	i, ok := m.index[id]
	if !ok {
		log.Panicf("flow %s has never transmitted", id)
	}

	return m.flows[i]
}

// RecordTx counts a packet sent on the flow. The flow is created on its
// first transmission.
func (m *Monitor) RecordTx(id FlowID, bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := m.flowOrCreate(id)
	f.TxPackets++
	f.TxBytes += uint64(bytes)
}

// RecordRx counts a packet delivered on the flow after the given delay.
func (m *Monitor) RecordRx(id FlowID, bytes int, delay sim.VTimeInSec) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := m.existingFlow(id)
	if f.RxPackets >= f.TxPackets {
		log.Panicf("flow %s receives more packets than it sent", id)
	}

	if f.RxPackets > 0 {
		jitter := delay - f.LastDelay
		if jitter < 0 {
			jitter = -jitter
		}
		f.JitterSum += jitter
	}

	f.RxPackets++
	f.RxBytes += uint64(bytes)
	f.DelaySum += delay
	f.LastDelay = delay
}

// RecordLoss counts a packet of the flow that will never be delivered.
func (m *Monitor) RecordLoss(id FlowID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := m.existingFlow(id)
	f.LostPackets++
}

// Flow returns a copy of the counters of a flow.
func (m *Monitor) Flow(id FlowID) (Flow, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return Flow{}, false
	}

	return *m.flows[i], true
}

// Flows returns a copy of all the flows, in the order they were created.
func (m *Monitor) Flows() []Flow {
	m.mu.RLock()
	defer m.mu.RUnlock()

	flows := make([]Flow, len(m.flows))
	for i, f := range m.flows {
		flows[i] = *f
	}

	return flows
}

// Snapshot sums the flows into a ResultsRecord. Ratios with a zero
// denominator are reported as 0.
func (m *Monitor) Snapshot() ResultsRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		r        ResultsRecord
		sumDelay float64
	)

	for _, f := range m.flows {
		r.TotalTx += f.TxPackets
		r.TotalRx += f.RxPackets
		r.TotalRxBytes += f.RxBytes
		r.TotalLost += f.LostPackets
		sumDelay += float64(f.DelaySum)
	}

	if r.TotalTx > 0 {
		r.PDR = float64(r.TotalRx) / float64(r.TotalTx)
	}

	if r.TotalRx > 0 {
		r.AvgDelay = sumDelay / float64(r.TotalRx)
	}

	if m.simTime > 0 {
		bps := float64(r.TotalRxBytes) * 8 / float64(m.simTime)
		r.ThroughputKbps = bps / 1000
	}

	return r
}

// Handle logs a summary when the simulation ends.
func (m *Monitor) Handle(now sim.VTimeInSec) {
	r := m.Snapshot()

	logrus.Infof(
		"simulation ended at %.6fs: %d flows, %d/%d packets delivered",
		now, len(m.Flows()), r.TotalRx, r.TotalTx)
}
