package sim

import (
	"github.com/sirupsen/logrus"
)

// EventLogger is a hook that logs every event that the engine fires.
type EventLogger struct {
}

// NewEventLogger returns a new EventLogger.
func NewEventLogger() *EventLogger {
	return &EventLogger{}
}

// Func writes the event information into the debug log.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(*Event)
	if !ok {
		return
	}

	logrus.Debugf("%.10f, event %s #%d %s",
		evt.Time(), evt.ID, evt.Seq(), evt.Label())
}
