package traffic

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/wsnsim/flowstats"
	"github.com/sarchlab/wsnsim/phy"
	"github.com/sarchlab/wsnsim/sim"
	"github.com/sarchlab/wsnsim/topology"
)

var _ = Describe("Client", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.SerialEngine
		link     *MockLinkModel
		flows    *MockFlowRecorder
		sensor   topology.Node
		sink     topology.Node
		server   *Server
		builder  ClientBuilder
		flowID   flowstats.FlowID
		txTimes  []sim.VTimeInSec
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewSerialEngine()
		link = NewMockLinkModel(mockCtrl)
		flows = NewMockFlowRecorder(mockCtrl)

		topo, err := topology.MakeBuilder().
			WithNumSensors(1).
			WithSensorPositions([]phy.Position{{X: 0, Y: 0}}).
			WithSinkPosition(phy.Position{X: 3, Y: 4}).
			Build()
		Expect(err).NotTo(HaveOccurred())

		sensor = topo.Sensors()[0]
		sink = topo.Sink()
		flowID = flowstats.FlowID{Src: sensor.ID, Dst: sink.ID}

		server = NewServer(engine, sink, DefaultPort, flows)
		Expect(server.Start(0)).To(Succeed())

		builder = MakeClientBuilder().
			WithScheduler(engine).
			WithLink(link).
			WithRecorder(flows).
			WithInterval(1).
			WithPacketSize(64).
			WithTxPower(20)

		txTimes = nil
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	recordTxTimes := func() {
		flows.EXPECT().
			RecordTx(flowID, 64).
			Do(func(flowstats.FlowID, int) {
				txTimes = append(txTimes, engine.CurrentTime())
			}).
			AnyTimes()
	}

	It("should send every interval until the stop time", func() {
		client := builder.Build(sensor, server)

		recordTxTimes()
		link.EXPECT().
			Evaluate(sensor.Position, sink.Position, 20.0).
			Return(phy.LinkResult{Delivered: true, Delay: 0.001}).
			Times(4)
		flows.EXPECT().
			RecordRx(flowID, 64, gomock.Any()).
			Do(func(_ flowstats.FlowID, _ int, delay sim.VTimeInSec) {
				Expect(float64(delay)).To(BeNumerically("~", 0.001, 1e-9))
			}).
			Times(4)

		Expect(client.Start(1)).To(Succeed())
		Expect(client.Stop(5)).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(txTimes).To(Equal([]sim.VTimeInSec{1, 2, 3, 4}))
		Expect(client.Sent()).To(Equal(uint64(4)))
		Expect(client.Lost()).To(Equal(uint64(0)))
		Expect(server.Received()).To(Equal(uint64(4)))
		Expect(engine.Pending()).To(Equal(0))
	})

	It("should not send at a stop time that is a multiple of the interval", func() {
		client := builder.WithInterval(0.3).Build(sensor, server)

		recordTxTimes()
		link.EXPECT().
			Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(phy.LinkResult{Delivered: true}).
			Times(3)
		flows.EXPECT().RecordRx(flowID, 64, gomock.Any()).Times(3)

		Expect(client.Start(0)).To(Succeed())
		Expect(client.Stop(0.9)).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(txTimes).To(HaveLen(3))
		Expect(float64(txTimes[0])).To(BeNumerically("~", 0, 1e-12))
		Expect(float64(txTimes[1])).To(BeNumerically("~", 0.3, 1e-12))
		Expect(float64(txTimes[2])).To(BeNumerically("~", 0.6, 1e-12))
		Expect(client.Sent()).To(Equal(uint64(3)))
	})

	It("should not drift over many intervals", func() {
		client := builder.WithInterval(0.1).Build(sensor, server)

		recordTxTimes()
		link.EXPECT().
			Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(phy.LinkResult{Delivered: true}).
			AnyTimes()
		flows.EXPECT().RecordRx(flowID, 64, gomock.Any()).AnyTimes()

		Expect(client.Start(0)).To(Succeed())
		Expect(client.Stop(100)).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(txTimes).To(HaveLen(1000))
		Expect(float64(txTimes[999])).To(BeNumerically("~", 99.9, 1e-9))
	})

	It("should count a loss when the link does not deliver", func() {
		client := builder.WithMaxPackets(2).Build(sensor, server)

		recordTxTimes()
		link.EXPECT().
			Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(phy.LinkResult{Delivered: false, RxPowerDbm: -120}).
			Times(2)
		flows.EXPECT().RecordLoss(flowID).Times(2)

		Expect(client.Start(0)).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(txTimes).To(Equal([]sim.VTimeInSec{0, 1}))
		Expect(client.Lost()).To(Equal(uint64(2)))
		Expect(server.Received()).To(Equal(uint64(0)))
	})

	It("should stop after the packet budget", func() {
		client := builder.WithMaxPackets(3).Build(sensor, server)

		recordTxTimes()
		link.EXPECT().
			Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(phy.LinkResult{Delivered: true}).
			Times(3)
		flows.EXPECT().RecordRx(flowID, 64, sim.VTimeInSec(0)).Times(3)

		Expect(client.Start(0.5)).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(txTimes).To(Equal([]sim.VTimeInSec{0.5, 1.5, 2.5}))
	})

	It("should not send at the stop time when started at the stop time", func() {
		client := builder.Build(sensor, server)

		Expect(client.Start(2)).To(Succeed())
		Expect(client.Stop(2)).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(client.Sent()).To(Equal(uint64(0)))
	})

	It("should not send after being stopped before it starts", func() {
		client := builder.Build(sensor, server)

		Expect(client.Stop(1)).To(Succeed())
		Expect(client.Start(3)).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(client.Sent()).To(Equal(uint64(0)))
	})

	It("should reject a start time in the past", func() {
		client := builder.Build(sensor, server)

		err := client.Start(-1)

		Expect(errors.Is(err, sim.ErrInvalidSchedule)).To(BeTrue())
	})

	It("should panic on invalid parameters", func() {
		Expect(func() {
			builder.WithInterval(0).Build(sensor, server)
		}).To(Panic())
		Expect(func() {
			builder.WithPacketSize(0).Build(sensor, server)
		}).To(Panic())
		Expect(func() {
			MakeClientBuilder().Build(sensor, server)
		}).To(Panic())
	})
})
