package flowstats

import (
	"context"

	"github.com/sarchlab/wsnsim/datarecording"
	"github.com/sarchlab/wsnsim/sim"
	"github.com/sarchlab/wsnsim/topology"
)

// Table names used by Export.
const (
	FlowsTable   = "flows"
	ResultsTable = "results"
)

type flowRow struct {
	Src         int
	Dst         int
	TxPackets   uint64
	TxBytes     uint64
	RxPackets   uint64
	RxBytes     uint64
	LostPackets uint64
	DelaySum    float64
	JitterSum   float64
	LastDelay   float64
	AvgDelay    float64
	PDR         float64
}

type resultsRow struct {
	SimTime        float64
	TotalTx        uint64
	TotalRx        uint64
	TotalRxBytes   uint64
	TotalLost      uint64
	PDR            float64
	AvgDelay       float64
	ThroughputKbps float64
}

// Export writes every flow and the experiment summary into the recorder and
// flushes it.
func (m *Monitor) Export(recorder datarecording.DataRecorder) {
	recorder.CreateTable(FlowsTable, flowRow{})
	recorder.CreateTable(ResultsTable, resultsRow{})

	for _, f := range m.Flows() {
		recorder.InsertData(FlowsTable, flowRow{
			Src:         int(f.ID.Src),
			Dst:         int(f.ID.Dst),
			TxPackets:   f.TxPackets,
			TxBytes:     f.TxBytes,
			RxPackets:   f.RxPackets,
			RxBytes:     f.RxBytes,
			LostPackets: f.LostPackets,
			DelaySum:    float64(f.DelaySum),
			JitterSum:   float64(f.JitterSum),
			LastDelay:   float64(f.LastDelay),
			AvgDelay:    float64(f.AvgDelay()),
			PDR:         f.PDR(),
		})
	}

	r := m.Snapshot()
	recorder.InsertData(ResultsTable, resultsRow{
		SimTime:        float64(m.simTime),
		TotalTx:        r.TotalTx,
		TotalRx:        r.TotalRx,
		TotalRxBytes:   r.TotalRxBytes,
		TotalLost:      r.TotalLost,
		PDR:            r.PDR,
		AvgDelay:       r.AvgDelay,
		ThroughputKbps: r.ThroughputKbps,
	})

	recorder.Flush()
}

// ReadFlows loads the flows written by Export.
func ReadFlows(
	ctx context.Context,
	reader datarecording.DataReader,
) ([]Flow, error) {
	rows, err := reader.Query(ctx, FlowsTable, flowRow{})
	if err != nil {
		return nil, err
	}

	flows := make([]Flow, 0, len(rows))
	for _, row := range rows {
		r := row.(*flowRow)
		flows = append(flows, Flow{
			ID: FlowID{
				Src: topology.NodeID(r.Src),
				Dst: topology.NodeID(r.Dst),
			},
			TxPackets:   r.TxPackets,
			TxBytes:     r.TxBytes,
			RxPackets:   r.RxPackets,
			RxBytes:     r.RxBytes,
			LostPackets: r.LostPackets,
			DelaySum:    sim.VTimeInSec(r.DelaySum),
			JitterSum:   sim.VTimeInSec(r.JitterSum),
			LastDelay:   sim.VTimeInSec(r.LastDelay),
		})
	}

	return flows, nil
}
