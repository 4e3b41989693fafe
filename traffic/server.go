package traffic

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/wsnsim/sim"
	"github.com/sarchlab/wsnsim/topology"
)

// DefaultPort is the port the sink listens on.
const DefaultPort uint16 = 4000

// Server is the application on the sink. It accepts the packets that arrive
// between its start and stop times on its port.
type Server struct {
	scheduler Scheduler
	node      topology.Node
	port      uint16
	recorder  FlowRecorder

	running  bool
	received uint64
	dropped  uint64
}

// NewServer creates a stopped server on the node.
func NewServer(
	scheduler Scheduler,
	node topology.Node,
	port uint16,
	recorder FlowRecorder,
) *Server {
	return &Server{
		scheduler: scheduler,
		node:      node,
		port:      port,
		recorder:  recorder,
	}
}

// Node returns the node that the server runs on.
func (s *Server) Node() topology.Node {
	return s.node
}

// Port returns the port that the server listens on.
func (s *Server) Port() uint16 {
	return s.port
}

// Start schedules the server to start accepting packets at the given time.
func (s *Server) Start(at sim.VTimeInSec) error {
	_, err := scheduleAt(s.scheduler, at, s.node.Name()+" start", func() {
		s.running = true
	})

	return err
}

// Stop schedules the server to stop accepting packets at the given time.
func (s *Server) Stop(at sim.VTimeInSec) error {
	_, err := scheduleAt(s.scheduler, at, s.node.Name()+" stop", func() {
		s.running = false
	})

	return err
}

// IsRunning tells if the server currently accepts packets.
func (s *Server) IsRunning() bool {
	return s.running
}

// Receive handles a packet that reaches the sink.
func (s *Server) Receive(pkt Packet) {
	if !s.running || pkt.Port != s.port {
		logrus.Debugf("%s drops %s", s.node.Name(), pkt)

		s.dropped++
		s.recorder.RecordLoss(pkt.FlowID())

		return
	}

	delay := s.scheduler.CurrentTime() - pkt.SentAt

	s.received++
	s.recorder.RecordRx(pkt.FlowID(), pkt.Size, delay)
}

// Received returns the number of packets accepted.
func (s *Server) Received() uint64 {
	return s.received
}

// Dropped returns the number of packets that arrived while the server was not
// accepting them.
func (s *Server) Dropped() uint64 {
	return s.dropped
}
