package simulation

import (
	"fmt"
	"io"

	"github.com/sarchlab/wsnsim/config"
	"github.com/sarchlab/wsnsim/flowstats"
)

// WriteReport prints the results of an experiment in a human readable block.
func WriteReport(w io.Writer, cfg config.Config, r flowstats.ResultsRecord) {
	fmt.Fprintln(w, "========== RESULTS ==========")
	fmt.Fprintf(w, "Sensors:            %d\n", cfg.NumSensors)
	fmt.Fprintf(w, "Simulation time:    %g s\n", cfg.SimTime)
	fmt.Fprintf(w, "Tx power:           %g dBm\n", cfg.TxPower)
	fmt.Fprintf(w, "Packet interval:    %g s\n", cfg.PacketInterval)
	fmt.Fprintf(w, "Packets sent:       %d\n", r.TotalTx)
	fmt.Fprintf(w, "Packets received:   %d\n", r.TotalRx)
	fmt.Fprintf(w, "PDR:                %g %%\n", r.PDR*100)
	fmt.Fprintf(w, "Average delay:      %g s\n", r.AvgDelay)
	fmt.Fprintf(w, "Throughput:         %g kbps\n", r.ThroughputKbps)
	fmt.Fprintln(w, "=============================")
}
