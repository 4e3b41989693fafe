package sim

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
		trace    []string
	)

	record := func(name string) Action {
		return func() {
			trace = append(trace, name)
		}
	}

	mustSchedule := func(delay VTimeInSec, action Action) *Event {
		evt, err := engine.Schedule(delay, action)
		Expect(err).NotTo(HaveOccurred())
		return evt
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
		trace = nil
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should run events in time order", func() {
		mustSchedule(4, record("evt1"))
		mustSchedule(2, func() {
			trace = append(trace, "evt2")
			mustSchedule(1, record("evt3"))
			mustSchedule(3, record("evt4"))
		})

		Expect(engine.Run()).To(Succeed())

		Expect(trace).To(Equal([]string{"evt2", "evt3", "evt1", "evt4"}))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(5)))
	})

	It("should run same-time events in the order they are scheduled", func() {
		for _, name := range []string{"a", "b", "c", "d"} {
			mustSchedule(1, record(name))
		}
		mustSchedule(0.5, func() {
			trace = append(trace, "early")
			mustSchedule(0.5, record("e"))
		})

		Expect(engine.Run()).To(Succeed())

		Expect(trace).To(Equal([]string{"early", "a", "b", "c", "d", "e"}))
	})

	It("should set the clock to the event time while the action runs", func() {
		var seen []VTimeInSec
		for _, d := range []VTimeInSec{0.25, 1.5, 0} {
			mustSchedule(d, func() {
				seen = append(seen, engine.CurrentTime())
			})
		}

		Expect(engine.Run()).To(Succeed())

		Expect(seen).To(Equal([]VTimeInSec{0, 0.25, 1.5}))
	})

	It("should reject negative delays", func() {
		evt, err := engine.Schedule(-1, record("never"))

		Expect(evt).To(BeNil())
		Expect(errors.Is(err, ErrInvalidSchedule)).To(BeTrue())
		Expect(engine.Pending()).To(Equal(0))
	})

	It("should reject NaN delays and nil actions", func() {
		_, err := engine.Schedule(VTimeInSec(math.NaN()), record("never"))
		Expect(err).To(MatchError(ErrInvalidSchedule))

		_, err = engine.Schedule(1, nil)
		Expect(err).To(MatchError(ErrInvalidSchedule))
	})

	It("should not run canceled events", func() {
		mustSchedule(1, record("kept"))
		canceled := mustSchedule(2, record("canceled"))
		Expect(engine.Pending()).To(Equal(2))

		engine.Cancel(canceled)
		engine.Cancel(canceled)

		Expect(engine.Pending()).To(Equal(1))
		Expect(engine.Run()).To(Succeed())
		Expect(trace).To(Equal([]string{"kept"}))
		Expect(canceled.IsCanceled()).To(BeTrue())
		Expect(canceled.IsFired()).To(BeFalse())
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(1)))
	})

	It("should ignore canceling a fired event", func() {
		evt := mustSchedule(1, record("fired"))
		Expect(engine.Run()).To(Succeed())

		engine.Cancel(evt)

		Expect(evt.IsFired()).To(BeTrue())
		Expect(evt.IsCanceled()).To(BeFalse())
		Expect(engine.Pending()).To(Equal(0))
	})

	It("should let an action cancel a later event", func() {
		later := mustSchedule(3, record("later"))
		mustSchedule(2, func() {
			trace = append(trace, "stop")
			engine.Cancel(later)
		})

		Expect(engine.Run()).To(Succeed())
		Expect(trace).To(Equal([]string{"stop"}))
	})

	It("should stop at the stop time", func() {
		mustSchedule(1, record("t1"))
		mustSchedule(5, record("t5"))
		mustSchedule(6, record("t6"))

		Expect(engine.RunUntil(5)).To(Succeed())

		Expect(trace).To(Equal([]string{"t1", "t5"}))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(5)))
		Expect(engine.Pending()).To(Equal(1))

		Expect(engine.RunUntil(10)).To(Succeed())
		Expect(trace).To(Equal([]string{"t1", "t5", "t6"}))
	})

	It("should run events scheduled during the run before the stop time", func() {
		var tick func()
		tick = func() {
			trace = append(trace, "tick")
			mustSchedule(1, tick)
		}
		mustSchedule(0, tick)

		Expect(engine.RunUntil(3)).To(Succeed())

		Expect(trace).To(HaveLen(4))
		Expect(engine.Pending()).To(Equal(1))
	})

	It("should invoke hooks around each fired event", func() {
		hook := NewMockHook(mockCtrl)
		engine.AcceptHook(hook)

		fired := mustSchedule(1, record("fired"))
		engine.Cancel(mustSchedule(2, record("canceled")))

		before := hook.EXPECT().Func(HookCtx{
			Domain: engine,
			Pos:    HookPosBeforeEvent,
			Item:   fired,
		})
		hook.EXPECT().Func(HookCtx{
			Domain: engine,
			Pos:    HookPosAfterEvent,
			Item:   fired,
		}).After(before)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.NumHooks()).To(Equal(1))
	})

	It("should panic on duplicated hooks", func() {
		hook := NewMockHook(mockCtrl)
		engine.AcceptHook(hook)

		Expect(func() { engine.AcceptHook(hook) }).To(Panic())
	})

	It("should notify simulation end handlers", func() {
		handler := NewMockSimulationEndHandler(mockCtrl)
		engine.RegisterSimulationEndHandler(handler)
		mustSchedule(2.5, record("last"))
		Expect(engine.Run()).To(Succeed())

		handler.EXPECT().Handle(VTimeInSec(2.5))

		engine.Finished()
	})

	It("should hold events while paused", func() {
		mustSchedule(1, record("evt"))
		engine.Pause()
		Expect(engine.IsPaused()).To(BeTrue())

		done := make(chan error)
		go func() {
			done <- engine.Run()
		}()

		Consistently(done, "50ms").ShouldNot(Receive())

		engine.Continue()

		Eventually(done).Should(Receive(BeNil()))
		Expect(trace).To(Equal([]string{"evt"}))
	})

	It("should produce identical traces for identical inputs", func() {
		runOnce := func() []string {
			e := NewSerialEngine()
			var ids []string
			e.AcceptHook(&traceHook{ids: &ids})

			for i := 0; i < 5; i++ {
				delay := VTimeInSec(i % 2)
				_, err := e.ScheduleLabeled(delay, "evt", func() {
					_, _ = e.Schedule(0.5, func() {})
				})
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(e.Run()).To(Succeed())

			return ids
		}

		first := runOnce()
		Expect(first).To(HaveLen(10))
		Expect(runOnce()).To(Equal(first))
	})
})

type traceHook struct {
	ids *[]string
}

func (h *traceHook) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt := ctx.Item.(*Event)
	*h.ids = append(*h.ids, evt.ID)
}
