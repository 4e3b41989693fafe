package simulation

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wsnsim/config"
	"github.com/sarchlab/wsnsim/datarecording"
	"github.com/sarchlab/wsnsim/flowstats"
	"github.com/sarchlab/wsnsim/phy"
)

type deadLink struct{}

func (deadLink) Evaluate(tx, rx phy.Position, _ float64) phy.LinkResult {
	return phy.LinkResult{Distance: tx.DistanceTo(rx), RxPowerDbm: -200}
}

func runOrDie(cfg config.Config) (*Simulation, flowstats.ResultsRecord) {
	s, err := MakeBuilder().WithConfig(cfg).Build()
	Expect(err).NotTo(HaveOccurred())

	r, err := s.Run()
	Expect(err).NotTo(HaveOccurred())

	s.Terminate()

	return s, r
}

var _ = Describe("Simulation", func() {
	var cfg config.Config

	BeforeEach(func() {
		cfg = config.Default()
	})

	It("should deliver every packet of a sensor on top of the sink", func() {
		cfg.NumSensors = 1
		cfg.SimTime = 5
		cfg.SensorPositions = []phy.Position{cfg.Region.Center()}

		_, r := runOrDie(cfg)

		Expect(r.TotalTx).To(Equal(uint64(4)))
		Expect(r.TotalRx).To(Equal(uint64(4)))
		Expect(r.PDR).To(Equal(1.0))
		Expect(r.AvgDelay).To(BeNumerically("~", 0, 1e-12))
		Expect(r.TotalRxBytes).To(Equal(uint64(4 * 64)))
	})

	It("should not send at the end of the run with a fractional interval", func() {
		cfg.NumSensors = 1
		cfg.StartTime = 0
		cfg.PacketInterval = 0.3
		cfg.SimTime = 0.9
		cfg.SensorPositions = []phy.Position{cfg.Region.Center()}

		_, r := runOrDie(cfg)

		Expect(r.TotalTx).To(Equal(uint64(3)))
		Expect(r.TotalRx).To(Equal(uint64(3)))
	})

	It("should lose every packet of a sensor out of range", func() {
		cfg.NumSensors = 1
		cfg.SimTime = 5
		cfg.SensorPositions = []phy.Position{{X: 0, Y: 0}}
		cfg.SinkPosition = &phy.Position{X: 100000, Y: 0}

		_, r := runOrDie(cfg)

		Expect(r.TotalTx).To(BeNumerically(">", 0))
		Expect(r.TotalRx).To(Equal(uint64(0)))
		Expect(r.TotalLost).To(Equal(r.TotalTx))
		Expect(r.PDR).To(Equal(0.0))
		Expect(r.AvgDelay).To(Equal(0.0))
	})

	It("should report zeros without sensors", func() {
		cfg.NumSensors = 0

		s, r := runOrDie(cfg)

		Expect(r).To(Equal(flowstats.ResultsRecord{}))
		Expect(s.Topology().Nodes()).To(HaveLen(1))
	})

	It("should run the reference experiment", func() {
		_, r := runOrDie(cfg)

		Expect(r.TotalTx).To(Equal(uint64(27 * 46)))
		Expect(r.TotalRx).To(Equal(r.TotalTx))
		Expect(r.PDR).To(Equal(1.0))
		Expect(r.AvgDelay).To(BeNumerically(">", 0))
		Expect(r.AvgDelay).To(BeNumerically("<", 1e-7))
		Expect(r.ThroughputKbps).To(
			BeNumerically("~", float64(27*46*64*8)/47/1000, 1e-9))
	})

	It("should keep the PDR between 0 and 1", func() {
		cfg.Region = config.Region{Width: 20000, Height: 20000}
		cfg.SimTime = 10

		_, r := runOrDie(cfg)

		Expect(r.TotalRx).To(BeNumerically("<=", r.TotalTx))
		Expect(r.PDR).To(BeNumerically(">=", 0))
		Expect(r.PDR).To(BeNumerically("<=", 1))
	})

	It("should not decrease the PDR when the power increases", func() {
		cfg.Region = config.Region{Width: 20000, Height: 20000}
		cfg.SimTime = 5

		last := -1.0
		for _, power := range []float64{-60, -20, 0, 10, 20, 30} {
			cfg.TxPower = power
			_, r := runOrDie(cfg)

			Expect(r.PDR).To(BeNumerically(">=", last))
			last = r.PDR
		}
	})

	It("should give the same trace for the same seed", func() {
		cfg.NumSensors = 5
		cfg.SimTime = 6
		cfg.Output.Trace = true

		first, _ := runOrDie(cfg)
		second, _ := runOrDie(cfg)

		Expect(first.Tracer().Len()).To(BeNumerically(">", 0))
		Expect(first.Tracer().Records()).To(Equal(second.Tracer().Records()))
		Expect(first.Topology().Nodes()).To(Equal(second.Topology().Nodes()))
	})

	It("should return the same results when run again", func() {
		cfg.NumSensors = 3
		cfg.SimTime = 4

		s, err := MakeBuilder().WithConfig(cfg).Build()
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		first, err := s.Run()
		Expect(err).NotTo(HaveOccurred())
		second, err := s.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
		Expect(s.FlowMonitor().Snapshot()).To(Equal(first))
	})

	It("should use the given link model", func() {
		cfg.NumSensors = 2
		cfg.SimTime = 3

		s, err := MakeBuilder().
			WithConfig(cfg).
			WithLinkModel(deadLink{}).
			Build()
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		r, err := s.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(r.TotalTx).To(Equal(uint64(4)))
		Expect(r.TotalLost).To(Equal(uint64(4)))
		Expect(s.Applications().Server.Received()).To(Equal(uint64(0)))
	})

	It("should record the flows, the results and the trace", func() {
		cfg.NumSensors = 2
		cfg.SimTime = 3
		name := filepath.Join(GinkgoT().TempDir(), "run")

		s, err := MakeBuilder().
			WithConfig(cfg).
			WithOutputFileName(name).
			WithTracing().
			Build()
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())
		s.Terminate()

		Expect(s.RecordFile()).To(Equal(name + datarecording.FileExtension))

		reader, err := datarecording.NewReader(s.RecordFile())
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		tables, err := reader.ListTables(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(Equal([]string{"event_trace", "flows", "results"}))
	})

	It("should refuse to overwrite a recording", func() {
		cfg.NumSensors = 1
		cfg.SimTime = 2
		name := filepath.Join(GinkgoT().TempDir(), "twice")
		cfg.Output.RecordFile = name

		runOrDie(cfg)

		_, err := MakeBuilder().WithConfig(cfg).Build()

		var cfgErr *config.ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Field).To(Equal("output.record_file"))
	})

	It("should reject an invalid configuration", func() {
		cfg.PacketInterval = -1

		s, err := MakeBuilder().WithConfig(cfg).Build()

		Expect(s).To(BeNil())
		var cfgErr *config.ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Field).To(Equal("packet_interval"))
	})

	It("should start and stop the monitor", func() {
		cfg.NumSensors = 1
		cfg.SimTime = 2

		s, err := MakeBuilder().WithConfig(cfg).WithMonitoring(0).Build()
		Expect(err).NotTo(HaveOccurred())

		Expect(s.MonitorURL()).To(HavePrefix("http://localhost:"))

		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())
		s.Terminate()
	})
})

var _ = Describe("Report", func() {
	It("should print the results", func() {
		buf := bytes.NewBuffer(nil)
		cfg := config.Default()

		WriteReport(buf, cfg, flowstats.ResultsRecord{
			TotalTx:        10,
			TotalRx:        5,
			PDR:            0.5,
			AvgDelay:       0.001,
			ThroughputKbps: 1.5,
		})

		Expect(buf.String()).To(ContainSubstring("Sensors:            27\n"))
		Expect(buf.String()).To(ContainSubstring("PDR:                50 %\n"))
		Expect(buf.String()).To(ContainSubstring("Throughput:         1.5 kbps\n"))
	})
})
