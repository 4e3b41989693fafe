package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/wsnsim/config"
)

// loadConfig merges, from the lowest to the highest priority, the defaults,
// the scenario file, the dotenv file, the process environment and the flags
// set on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	f := cmd.Flags()
	cfg := config.Default()

	if path, _ := f.GetString("config"); path != "" {
		var err error

		cfg, err = config.LoadFile(path)
		if err != nil {
			return cfg, err
		}
	}

	envFile, _ := f.GetString("env-file")
	if err := config.LoadEnvFile(&cfg, envFile); err != nil {
		return cfg, err
	}

	if err := config.ApplyEnv(&cfg, config.Environ()); err != nil {
		return cfg, err
	}

	applyFlags(f, &cfg)

	return cfg, nil
}

func applyFlags(f *pflag.FlagSet, cfg *config.Config) {
	f.Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "nSensors":
			cfg.NumSensors, _ = f.GetInt(flag.Name)
		case "simTime":
			cfg.SimTime, _ = f.GetFloat64(flag.Name)
		case "packetInterval":
			cfg.PacketInterval, _ = f.GetFloat64(flag.Name)
		case "packetSize":
			cfg.PacketSize, _ = f.GetInt(flag.Name)
		case "txPower":
			cfg.TxPower, _ = f.GetFloat64(flag.Name)
		case "seed":
			cfg.Seed, _ = f.GetInt64(flag.Name)
		case "record":
			cfg.Output.RecordFile, _ = f.GetString(flag.Name)
		case "trace":
			cfg.Output.Trace, _ = f.GetBool(flag.Name)
		case "monitor":
			cfg.Monitor.Enabled, _ = f.GetBool(flag.Name)
		case "monitor-port":
			cfg.Monitor.Port, _ = f.GetInt(flag.Name)
		case "open-browser":
			cfg.Monitor.OpenBrowser, _ = f.GetBool(flag.Name)
		case "log-level":
			cfg.LogLevel, _ = f.GetString(flag.Name)
		}
	})
}
