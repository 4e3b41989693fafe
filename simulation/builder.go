package simulation

import (
	"os"

	"github.com/rs/xid"

	"github.com/sarchlab/wsnsim/config"
	"github.com/sarchlab/wsnsim/datarecording"
	"github.com/sarchlab/wsnsim/flowstats"
	"github.com/sarchlab/wsnsim/monitoring"
	"github.com/sarchlab/wsnsim/phy"
	"github.com/sarchlab/wsnsim/sim"
	"github.com/sarchlab/wsnsim/topology"
	"github.com/sarchlab/wsnsim/tracing"
	"github.com/sarchlab/wsnsim/traffic"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg         config.Config
	monitorOn   bool
	monitorPort int
	openBrowser bool
	recordFile  string
	record      bool
	trace       bool
	link        phy.LinkModel
}

// MakeBuilder creates a builder for the default experiment, without
// monitoring, recording or tracing.
func MakeBuilder() Builder {
	return Builder{
		cfg: config.Default(),
	}
}

// WithConfig sets the experiment. The output and monitor sections of the
// configuration are applied as well.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	b.monitorOn = cfg.Monitor.Enabled
	b.monitorPort = cfg.Monitor.Port
	b.openBrowser = cfg.Monitor.OpenBrowser
	b.recordFile = cfg.Output.RecordFile
	b.record = cfg.Output.RecordFile != ""
	b.trace = cfg.Output.Trace

	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	b.monitorPort = 0
	b.openBrowser = false

	return b
}

// WithMonitoring turns on the HTTP monitor. Port 0 picks a random port.
func (b Builder) WithMonitoring(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port

	return b
}

// WithOutputFileName records the results into <name>.sqlite3. An empty name
// generates one from the simulation ID.
func (b Builder) WithOutputFileName(name string) Builder {
	b.record = true
	b.recordFile = name

	return b
}

// WithTracing keeps a record of every fired event. The trace is also written
// into the recording if there is one.
func (b Builder) WithTracing() Builder {
	b.trace = true
	return b
}

// WithLinkModel replaces the link model described by the radio
// configuration.
func (b Builder) WithLinkModel(l phy.LinkModel) Builder {
	b.link = l
	return b
}

func (b Builder) parametersMustBeValid() error {
	if err := b.cfg.Validate(); err != nil {
		return err
	}

	if !b.monitorOn && b.monitorPort != 0 {
		return config.Errorf("monitor.port",
			"cannot be set when monitoring is disabled")
	}

	return nil
}

// Build validates the configuration and wires one experiment. Nothing is
// scheduled if the configuration is invalid.
func (b Builder) Build() (*Simulation, error) {
	if err := b.parametersMustBeValid(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:  xid.New().String(),
		cfg: b.cfg,
	}

	topoBuilder, err := topology.MakeBuilder().WithConfig(b.cfg)
	if err != nil {
		return nil, err
	}

	s.topology, err = topoBuilder.Build()
	if err != nil {
		return nil, err
	}

	s.link = b.link
	if s.link == nil {
		s.link = b.cfg.Radio.LinkModel()
	}

	if b.record {
		if err := b.createRecorder(s); err != nil {
			return nil, err
		}
	}

	s.engine = sim.NewSerialEngine()
	s.engine.AcceptHook(sim.NewEventLogger())

	if b.trace {
		s.tracer = tracing.NewEventTracer()
		if s.recorder != nil {
			s.tracer.WithRecorder(s.recorder)
		}

		tracing.CollectTrace(s.engine, s.tracer)
	}

	s.flows = flowstats.NewMonitor(sim.VTimeInSec(b.cfg.SimTime))
	s.engine.RegisterSimulationEndHandler(s.flows)

	s.apps, err = traffic.Install(s.engine, s.topology, s.link, s.flows,
		traffic.Params{
			Port:       b.cfg.SinkPort,
			StartTime:  sim.VTimeInSec(b.cfg.StartTime),
			StopTime:   sim.VTimeInSec(b.cfg.SimTime),
			Interval:   sim.VTimeInSec(b.cfg.PacketInterval),
			PacketSize: b.cfg.PacketSize,
			TxPower:    b.cfg.TxPower,
			MaxPackets: b.cfg.MaxPackets,
		})
	if err != nil {
		s.Terminate()
		return nil, err
	}

	if b.monitorOn {
		if err := b.startMonitor(s); err != nil {
			s.Terminate()
			return nil, err
		}
	}

	return s, nil
}

func (b Builder) createRecorder(s *Simulation) error {
	name := b.recordFile
	if name == "" {
		name = "wsnsim_" + s.id
	}

	filename := name + datarecording.FileExtension
	if _, err := os.Stat(filename); err == nil {
		return config.Errorf("output.record_file", "%s already exists", filename)
	}

	s.recorder = datarecording.New(name)
	s.recordFile = filename

	return nil
}

func (b Builder) startMonitor(s *Simulation) error {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	if b.openBrowser {
		s.monitor.WithBrowser()
	}

	s.monitor.RegisterEngine(s.engine)
	s.monitor.RegisterTopology(s.topology)
	s.monitor.RegisterFlows(s.flows)

	url, err := s.monitor.StartServer()
	if err != nil {
		return err
	}

	s.monitorURL = url

	return nil
}
