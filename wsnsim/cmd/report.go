package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/wsnsim/datarecording"
	"github.com/sarchlab/wsnsim/flowstats"
)

var reportCmd = &cobra.Command{
	Use:   "report <recording.sqlite3>",
	Short: "Print the flows stored in a recording.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		rows, err := flowstats.ReadFlows(cmd.Context(), reader)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FLOW\tTX\tRX\tLOST\tPDR\tAVG DELAY (s)")
		for _, f := range rows {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.4f\t%.9f\n",
				f.ID, f.TxPackets, f.RxPackets, f.LostPackets,
				f.PDR(), f.AvgDelay())
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
