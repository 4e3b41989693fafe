// Package config holds the parameters of a sensor network experiment.
package config

import (
	"math"
	"net/netip"

	"github.com/sarchlab/wsnsim/phy"
)

// Region is the rectangle, anchored at the origin, where sensors are placed.
type Region struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Center returns the middle point of the region.
func (r Region) Center() phy.Position {
	return phy.Position{X: r.Width / 2, Y: r.Height / 2}
}

// RadioConfig selects and parameterizes the link model.
type RadioConfig struct {
	// Frequency in Hz used by the free-space model.
	Frequency float64 `yaml:"frequency"`

	// RxSensitivity in dBm.
	RxSensitivity float64 `yaml:"rx_sensitivity"`

	// PropagationSpeed in m/s.
	PropagationSpeed float64 `yaml:"propagation_speed"`

	// LossModels lists the path-loss models applied in order. Known names
	// are "friis" and "logdistance".
	LossModels []string `yaml:"loss_models"`

	SystemLoss float64 `yaml:"system_loss"`
	MinLoss    float64 `yaml:"min_loss"`

	LogDistanceExponent float64 `yaml:"log_distance_exponent"`
	ReferenceDistance   float64 `yaml:"reference_distance"`
	ReferenceLoss       float64 `yaml:"reference_loss"`
}

// OutputConfig controls what is persisted after a run.
type OutputConfig struct {
	// RecordFile is the SQLite file name without extension. Empty disables
	// recording.
	RecordFile string `yaml:"record_file"`

	// Trace records every fired event into the recording.
	Trace bool `yaml:"trace"`
}

// MonitorConfig controls the HTTP monitor.
type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

// Config is the full set of parameters of one experiment.
type Config struct {
	NumSensors     int     `yaml:"n_sensors"`
	SimTime        float64 `yaml:"sim_time"`
	PacketInterval float64 `yaml:"packet_interval"`
	PacketSize     int     `yaml:"packet_size"`
	TxPower        float64 `yaml:"tx_power"`
	StartTime      float64 `yaml:"start_time"`
	MaxPackets     uint64  `yaml:"max_packets"`
	Seed           int64   `yaml:"seed"`

	Region Region `yaml:"region"`

	// SinkPosition defaults to the center of the region.
	SinkPosition *phy.Position `yaml:"sink_position"`

	// SensorPositions, if set, replaces random placement.
	SensorPositions []phy.Position `yaml:"sensor_positions"`

	AddressBase string `yaml:"address_base"`
	SinkPort    uint16 `yaml:"sink_port"`

	Radio   RadioConfig   `yaml:"radio"`
	Output  OutputConfig  `yaml:"output"`
	Monitor MonitorConfig `yaml:"monitor"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the reference experiment: 27 sensors in a 30 m x 30 m
// area, one 64-byte packet per second each, for 47 seconds.
func Default() Config {
	return Config{
		NumSensors:     27,
		SimTime:        47,
		PacketInterval: 1,
		PacketSize:     64,
		TxPower:        20,
		StartTime:      1,
		Seed:           1,
		Region:         Region{Width: 30, Height: 30},
		AddressBase:    "10.1.1.0/24",
		SinkPort:       4000,
		Radio: RadioConfig{
			Frequency:           float64(5.15 * phy.GHz),
			RxSensitivity:       phy.DefaultRxSensitivity,
			PropagationSpeed:    phy.SpeedOfLight,
			LossModels:          []string{"friis"},
			SystemLoss:          1,
			MinLoss:             0,
			LogDistanceExponent: 3,
			ReferenceDistance:   1,
			ReferenceLoss:       46.6777,
		},
		LogLevel: "info",
	}
}

// Sink returns the configured sink position or the region center.
func (c Config) Sink() phy.Position {
	if c.SinkPosition != nil {
		return *c.SinkPosition
	}

	return c.Region.Center()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func mustBePositive(field string, v float64) error {
	if !isFinite(v) || v <= 0 {
		return Errorf(field, "must be a positive number, got %v", v)
	}

	return nil
}

func mustBeNonNegative(field string, v float64) error {
	if !isFinite(v) || v < 0 {
		return Errorf(field, "must be a non-negative number, got %v", v)
	}

	return nil
}

// Validate checks every parameter and returns the first problem found as a
// *ConfigurationError.
func (c Config) Validate() error {
	if c.NumSensors < 0 {
		return Errorf("n_sensors", "must not be negative, got %d", c.NumSensors)
	}

	if c.PacketSize <= 0 {
		return Errorf("packet_size", "must be positive, got %d", c.PacketSize)
	}

	if !isFinite(c.TxPower) {
		return Errorf("tx_power", "must be a finite number, got %v", c.TxPower)
	}

	checks := []struct {
		field    string
		value    float64
		positive bool
	}{
		{"sim_time", c.SimTime, true},
		{"packet_interval", c.PacketInterval, true},
		{"start_time", c.StartTime, false},
		{"region.width", c.Region.Width, false},
		{"region.height", c.Region.Height, false},
	}

	for _, check := range checks {
		var err error
		if check.positive {
			err = mustBePositive(check.field, check.value)
		} else {
			err = mustBeNonNegative(check.field, check.value)
		}

		if err != nil {
			return err
		}
	}

	if c.SinkPosition != nil && !c.SinkPosition.IsFinite() {
		return Errorf("sink_position", "must be finite, got %s", c.SinkPosition)
	}

	if len(c.SensorPositions) > 0 && len(c.SensorPositions) != c.NumSensors {
		return Errorf("sensor_positions",
			"has %d entries for %d sensors",
			len(c.SensorPositions), c.NumSensors)
	}

	if _, err := netip.ParsePrefix(c.AddressBase); err != nil {
		return Errorf("address_base", "is not a prefix: %v", err)
	}

	if c.Monitor.Port < 0 || c.Monitor.Port > 65535 {
		return Errorf("monitor.port", "is out of range, got %d", c.Monitor.Port)
	}

	if !c.Monitor.Enabled && c.Monitor.Port != 0 {
		return Errorf("monitor.port", "cannot be set when monitoring is disabled")
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	return c.Radio.validate()
}

func (r RadioConfig) validate() error {
	if err := mustBePositive("radio.frequency", r.Frequency); err != nil {
		return err
	}

	if err := mustBePositive("radio.propagation_speed", r.PropagationSpeed); err != nil {
		return err
	}

	if !isFinite(r.RxSensitivity) {
		return Errorf("radio.rx_sensitivity", "must be finite, got %v", r.RxSensitivity)
	}

	if len(r.LossModels) == 0 {
		return Errorf("radio.loss_models", "must name at least one model")
	}

	for _, name := range r.LossModels {
		switch name {
		case LossFriis:
			if err := mustBePositive("radio.system_loss", r.SystemLoss); err != nil {
				return err
			}
		case LossLogDistance:
			if err := mustBePositive("radio.reference_distance", r.ReferenceDistance); err != nil {
				return err
			}
			if err := mustBeNonNegative("radio.log_distance_exponent", r.LogDistanceExponent); err != nil {
				return err
			}
		default:
			return Errorf("radio.loss_models", "has unknown model %q", name)
		}
	}

	return nil
}

// Names of the supported path-loss models.
const (
	LossFriis       = "friis"
	LossLogDistance = "logdistance"
)

// LinkModel builds the channel described by the radio configuration.
func (r RadioConfig) LinkModel() *phy.Channel {
	var loss phy.ChainedLoss

	for _, name := range r.LossModels {
		switch name {
		case LossFriis:
			loss = append(loss, phy.FriisLoss{
				Frequency:  phy.Freq(r.Frequency),
				SystemLoss: r.SystemLoss,
				MinLoss:    r.MinLoss,
			})
		case LossLogDistance:
			loss = append(loss, phy.LogDistanceLoss{
				Exponent:          r.LogDistanceExponent,
				ReferenceDistance: r.ReferenceDistance,
				ReferenceLoss:     r.ReferenceLoss,
			})
		}
	}

	var lossModel phy.LossModel = loss
	if len(loss) == 1 {
		lossModel = loss[0]
	}

	return &phy.Channel{
		Delay:         phy.ConstantSpeedDelay{Speed: r.PropagationSpeed},
		Loss:          lossModel,
		RxSensitivity: r.RxSensitivity,
	}
}
