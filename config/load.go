package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables that override the
// configuration.
const EnvPrefix = "WSNSIM_"

// LoadFile reads a YAML scenario file. Fields missing from the file keep
// their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	return cfg, nil
}

// LoadEnvFile applies the WSNSIM_* entries of a dotenv file to cfg. A
// missing file is not an error.
func LoadEnvFile(cfg *Config, path string) error {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("reading env file %s: %w", path, err)
	}

	return ApplyEnv(cfg, env)
}

// Environ returns the WSNSIM_* variables of the process environment.
func Environ() map[string]string {
	env := make(map[string]string)

	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, EnvPrefix) {
			env[key] = value
		}
	}

	return env
}

type envSetter func(cfg *Config, value string) error

var envSetters = map[string]envSetter{
	"N_SENSORS": func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		cfg.NumSensors = n
		return err
	},
	"SIM_TIME": func(cfg *Config, v string) error {
		return parseFloat(v, &cfg.SimTime)
	},
	"PACKET_INTERVAL": func(cfg *Config, v string) error {
		return parseFloat(v, &cfg.PacketInterval)
	},
	"PACKET_SIZE": func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		cfg.PacketSize = n
		return err
	},
	"TX_POWER": func(cfg *Config, v string) error {
		return parseFloat(v, &cfg.TxPower)
	},
	"START_TIME": func(cfg *Config, v string) error {
		return parseFloat(v, &cfg.StartTime)
	},
	"SEED": func(cfg *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		cfg.Seed = n
		return err
	},
	"RECORD_FILE": func(cfg *Config, v string) error {
		cfg.Output.RecordFile = v
		return nil
	},
	"LOG_LEVEL": func(cfg *Config, v string) error {
		cfg.LogLevel = v
		return nil
	},
}

func parseFloat(v string, dst *float64) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}

	*dst = f

	return nil
}

// ApplyEnv overrides cfg with the WSNSIM_* entries of env. Keys without the
// prefix and unknown keys are ignored.
func ApplyEnv(cfg *Config, env map[string]string) error {
	for key, value := range env {
		name, ok := strings.CutPrefix(key, EnvPrefix)
		if !ok {
			continue
		}

		setter, ok := envSetters[name]
		if !ok {
			continue
		}

		if err := setter(cfg, strings.TrimSpace(value)); err != nil {
			return Errorf(key, "cannot be parsed: %v", err)
		}
	}

	return nil
}
