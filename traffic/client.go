package traffic

import (
	"fmt"
	"log"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/wsnsim/phy"
	"github.com/sarchlab/wsnsim/sim"
	"github.com/sarchlab/wsnsim/topology"
)

// Client is the application on a sensor. It sends a packet to the sink every
// interval until it is stopped or runs out of packets.
type Client struct {
	scheduler Scheduler
	link      phy.LinkModel
	recorder  FlowRecorder
	node      topology.Node
	server    *Server

	interval   sim.VTimeInSec
	packetSize int
	txPower    float64
	maxPackets uint64

	nextSend  *sim.Event
	startTime sim.VTimeInSec
	periods   uint64
	stopTime  sim.VTimeInSec
	stopped   bool
	sent      uint64
	lost      uint64
}

// stopTolerance is the fraction of an interval within which a send time is
// considered to be at the stop time.
const stopTolerance = 1e-9

// Node returns the node that the client runs on.
func (c *Client) Node() topology.Node {
	return c.node
}

// Sent returns the number of packets sent.
func (c *Client) Sent() uint64 {
	return c.sent
}

// Lost returns the number of packets that the link failed to deliver.
func (c *Client) Lost() uint64 {
	return c.lost
}

// Start schedules the first packet at the given time.
func (c *Client) Start(at sim.VTimeInSec) error {
	evt, err := scheduleAt(c.scheduler, at, c.sendLabel(), c.send)
	if err != nil {
		return err
	}

	c.scheduler.Cancel(c.nextSend)
	c.nextSend = evt
	c.startTime = at
	c.periods = 0

	return nil
}

// Stop schedules the client to stop at the given time. No packet is sent at
// or after the stop time.
func (c *Client) Stop(at sim.VTimeInSec) error {
	_, err := scheduleAt(c.scheduler, at, c.node.Name()+" stop", c.stop)
	if err != nil {
		return err
	}

	if at < c.stopTime {
		c.stopTime = at
	}

	return nil
}

func (c *Client) stop() {
	c.stopped = true
	c.scheduler.Cancel(c.nextSend)
	c.nextSend = nil
}

func (c *Client) sendLabel() string {
	return fmt.Sprintf("%s send #%d", c.node.Name(), c.sent+1)
}

func (c *Client) send() {
	now := c.scheduler.CurrentTime()
	c.nextSend = nil

	if c.stopped || c.reachedStopTime(now) {
		return
	}

	c.sent++
	sink := c.server.Node()
	pkt := Packet{
		Seq:     c.sent,
		Size:    c.packetSize,
		Src:     c.node.ID,
		Dst:     sink.ID,
		SrcAddr: c.node.Address,
		DstAddr: sink.Address,
		Port:    c.server.Port(),
		SentAt:  now,
	}

	c.recorder.RecordTx(pkt.FlowID(), pkt.Size)

	result := c.link.Evaluate(c.node.Position, sink.Position, c.txPower)
	if result.Delivered {
		c.mustSchedule(result.Delay, fmt.Sprintf("%s recv #%d", sink.Name(), pkt.Seq),
			func() { c.server.Receive(pkt) })
	} else {
		logrus.Debugf("%s lost at %.2f dBm over %.2f m",
			pkt, result.RxPowerDbm, result.Distance)

		c.lost++
		c.recorder.RecordLoss(pkt.FlowID())
	}

	if c.maxPackets > 0 && c.sent >= c.maxPackets {
		return
	}

	// Send times are derived from the start time so that rounding does not
	// accumulate over many intervals.
	c.periods++
	next := c.startTime + sim.VTimeInSec(c.periods)*c.interval
	if c.reachedStopTime(next) {
		return
	}

	evt, err := scheduleAt(c.scheduler, next, c.sendLabel(), c.send)
	if err != nil {
		log.Panicf("%s cannot schedule %s: %v", c.node.Name(), c.sendLabel(), err)
	}

	c.nextSend = evt
}

func (c *Client) reachedStopTime(t sim.VTimeInSec) bool {
	return t >= c.stopTime-c.interval*stopTolerance
}

func (c *Client) mustSchedule(
	delay sim.VTimeInSec,
	label string,
	action sim.Action,
) *sim.Event {
	evt, err := c.scheduler.ScheduleLabeled(delay, label, action)
	if err != nil {
		log.Panicf("%s cannot schedule %s: %v", c.node.Name(), label, err)
	}

	return evt
}

// ClientBuilder can build clients.
type ClientBuilder struct {
	scheduler  Scheduler
	link       phy.LinkModel
	recorder   FlowRecorder
	interval   sim.VTimeInSec
	packetSize int
	txPower    float64
	maxPackets uint64
}

// MakeClientBuilder returns a ClientBuilder with a 1 s interval, 64-byte
// packets and a 20 dBm transmission power.
func MakeClientBuilder() ClientBuilder {
	return ClientBuilder{
		interval:   1,
		packetSize: 64,
		txPower:    20,
	}
}

// WithScheduler sets the engine that runs the client.
func (b ClientBuilder) WithScheduler(s Scheduler) ClientBuilder {
	b.scheduler = s
	return b
}

// WithLink sets the link model used to reach the sink.
func (b ClientBuilder) WithLink(l phy.LinkModel) ClientBuilder {
	b.link = l
	return b
}

// WithRecorder sets where the transmissions and losses are counted.
func (b ClientBuilder) WithRecorder(r FlowRecorder) ClientBuilder {
	b.recorder = r
	return b
}

// WithInterval sets the time between two packets.
func (b ClientBuilder) WithInterval(i sim.VTimeInSec) ClientBuilder {
	b.interval = i
	return b
}

// WithPacketSize sets the payload size in bytes.
func (b ClientBuilder) WithPacketSize(s int) ClientBuilder {
	b.packetSize = s
	return b
}

// WithTxPower sets the transmission power in dBm.
func (b ClientBuilder) WithTxPower(p float64) ClientBuilder {
	b.txPower = p
	return b
}

// WithMaxPackets limits the number of packets sent. 0 means no limit.
func (b ClientBuilder) WithMaxPackets(n uint64) ClientBuilder {
	b.maxPackets = n
	return b
}

// Build creates a client on the node that sends to the server.
func (b ClientBuilder) Build(node topology.Node, server *Server) *Client {
	b.mustBeValid()

	return &Client{
		scheduler:  b.scheduler,
		link:       b.link,
		recorder:   b.recorder,
		node:       node,
		server:     server,
		interval:   b.interval,
		packetSize: b.packetSize,
		txPower:    b.txPower,
		maxPackets: b.maxPackets,
		stopTime:   sim.VTimeInSec(math.Inf(1)),
	}
}

func (b ClientBuilder) mustBeValid() {
	if b.scheduler == nil {
		panic("scheduler is not set")
	}

	if b.link == nil {
		panic("link model is not set")
	}

	if b.recorder == nil {
		panic("flow recorder is not set")
	}

	if !(b.interval > 0) || math.IsInf(float64(b.interval), 0) {
		panic("interval must be positive")
	}

	if b.packetSize <= 0 {
		panic("packet size must be positive")
	}
}
