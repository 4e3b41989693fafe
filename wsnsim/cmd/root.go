// Package cmd provides the command-line interface of wsnsim.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/wsnsim/config"
	"github.com/sarchlab/wsnsim/simulation"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wsnsim",
	Short: "wsnsim simulates sensors sending periodic packets to a sink.",
	Long: `wsnsim places sensors in a square region, sends one packet per ` +
		`interval from every sensor to a central sink over a free-space ` +
		`radio channel, and reports the delivery ratio, delay and ` +
		`throughput of the experiment.`,
	SilenceUsage: true,
	RunE:         runExperiment,
}

func init() {
	addFlags(rootCmd.Flags())
}

func addFlags(f *pflag.FlagSet) {
	d := config.Default()

	f.String("config", "", "YAML scenario file")
	f.String("env-file", ".env", "dotenv file with WSNSIM_* overrides")
	f.Int("nSensors", d.NumSensors, "number of sensors")
	f.Float64("simTime", d.SimTime, "simulation time in seconds")
	f.Float64("packetInterval", d.PacketInterval, "seconds between two packets")
	f.Int("packetSize", d.PacketSize, "packet size in bytes")
	f.Float64("txPower", d.TxPower, "transmission power in dBm")
	f.Int64("seed", d.Seed, "seed of the sensor placement")
	f.String("record", "", "record the results into <file>.sqlite3")
	f.Bool("trace", false, "record every fired event")
	f.Bool("monitor", false, "serve the HTTP monitor while running")
	f.Int("monitor-port", 0, "port of the HTTP monitor, random if unset")
	f.Bool("open-browser", false, "open the HTTP monitor in a browser")
	f.String("log-level", d.LogLevel, "debug, info, warn or error")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func runExperiment(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.SetupLogging(); err != nil {
		return err
	}

	s, err := simulation.MakeBuilder().WithConfig(cfg).Build()
	if err != nil {
		return err
	}
	defer s.Terminate()

	results, err := s.Run()
	if err != nil {
		return err
	}

	simulation.WriteReport(cmd.OutOrStdout(), cfg, results)

	if s.RecordFile() != "" {
		fmt.Fprintf(os.Stderr, "Results recorded in %s\n", s.RecordFile())
	}

	return nil
}
