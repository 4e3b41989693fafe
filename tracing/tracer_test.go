package tracing

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wsnsim/datarecording"
	"github.com/sarchlab/wsnsim/sim"
)

func scheduleOrDie(engine sim.Engine, delay sim.VTimeInSec, label string) {
	_, err := engine.ScheduleLabeled(delay, label, func() {})
	Expect(err).NotTo(HaveOccurred())
}

var _ = Describe("EventTracer", func() {
	var (
		engine *sim.SerialEngine
		tracer *EventTracer
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine().
			WithIDGenerator(sim.NewSequentialIDGenerator())
		tracer = NewEventTracer()
	})

	It("should record events in firing order", func() {
		CollectTrace(engine, tracer)

		scheduleOrDie(engine, 2, "late")
		scheduleOrDie(engine, 1, "first")
		scheduleOrDie(engine, 1, "second")

		engine.Run()

		records := tracer.Records()
		Expect(records).To(HaveLen(3))
		Expect(records[0].Label).To(Equal("first"))
		Expect(records[1].Label).To(Equal("second"))
		Expect(records[2].Label).To(Equal("late"))
		Expect(records[0].Time).To(Equal(1.0))
		Expect(records[2].Time).To(Equal(2.0))
		Expect(records[0].Seq).To(BeNumerically("<", records[1].Seq))
	})

	It("should not record cancelled events", func() {
		CollectTrace(engine, tracer)

		evt, err := engine.ScheduleLabeled(1, "cancelled", func() {})
		Expect(err).NotTo(HaveOccurred())
		scheduleOrDie(engine, 2, "kept")
		engine.Cancel(evt)

		engine.Run()

		Expect(tracer.Len()).To(Equal(1))
		Expect(tracer.Records()[0].Label).To(Equal("kept"))
	})

	It("should panic when attached twice", func() {
		CollectTrace(engine, tracer)

		Expect(func() { CollectTrace(engine, tracer) }).To(Panic())
	})

	It("should write the trace into a recorder", func() {
		name := filepath.Join(GinkgoT().TempDir(), "trace")
		recorder := datarecording.New(name)

		tracer = NewEventTracer().WithRecorder(recorder).WithoutMemory()
		CollectTrace(engine, tracer)

		scheduleOrDie(engine, 0.5, "a")
		scheduleOrDie(engine, 1.5, "b")
		engine.Run()

		Expect(tracer.Len()).To(Equal(0))
		Expect(recorder.Close()).To(Succeed())

		reader, err := datarecording.NewReader(name + datarecording.FileExtension)
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		rows, err := reader.Query(context.Background(), TraceTable, EventRecord{})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].(*EventRecord).Label).To(Equal("a"))
		Expect(rows[1].(*EventRecord).Time).To(Equal(1.5))
	})
})
