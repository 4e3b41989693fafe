// Package simulation wires the parts of an experiment together and runs it.
package simulation

import (
	"context"
	"time"

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

// A Simulation is one experiment, ready to run.
type Simulation struct {
	id  string
	cfg config.Config

	engine   *sim.SerialEngine
	topology *topology.Topology
	link     phy.LinkModel
	flows    *flowstats.Monitor
	apps     traffic.Applications

	recorder   datarecording.DataRecorder
	recordFile string
	tracer     *tracing.EventTracer
	monitor    *monitoring.Monitor
	monitorURL string

	finished bool
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the parameters of the experiment.
func (s *Simulation) Config() config.Config {
	return s.cfg
}

// Engine returns the engine used in the simulation.
func (s *Simulation) Engine() sim.Engine {
	return s.engine
}

// Topology returns the nodes of the experiment.
func (s *Simulation) Topology() *topology.Topology {
	return s.topology
}

// FlowMonitor returns the flow statistics of the experiment.
func (s *Simulation) FlowMonitor() *flowstats.Monitor {
	return s.flows
}

// Applications returns the installed server and clients.
func (s *Simulation) Applications() traffic.Applications {
	return s.apps
}

// Tracer returns the event tracer, or nil if tracing is off.
func (s *Simulation) Tracer() *tracing.EventTracer {
	return s.tracer
}

// RecordFile returns the name of the SQLite file, or "" if recording is off.
func (s *Simulation) RecordFile() string {
	return s.recordFile
}

// MonitorURL returns the address of the HTTP monitor, or "" if monitoring is
// off.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// Run processes the events up to the simulation time and returns the results.
// The flows and the results are written into the recording if there is one.
// Running a finished simulation only returns the results again.
func (s *Simulation) Run() (flowstats.ResultsRecord, error) {
	if s.finished {
		return s.flows.Snapshot(), nil
	}

	err := s.engine.RunUntil(sim.VTimeInSec(s.cfg.SimTime))
	if err != nil {
		return flowstats.ResultsRecord{}, err
	}

	s.finished = true
	s.engine.Finished()

	if s.recorder != nil {
		s.flows.Export(s.recorder)
	}

	return s.flows.Snapshot(), nil
}

// Terminate flushes the recording and stops the monitor.
func (s *Simulation) Terminate() {
	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			panic(err)
		}
	}

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := s.monitor.StopServer(ctx); err != nil {
			panic(err)
		}

		s.monitor = nil
	}
}
