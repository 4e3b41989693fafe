package phy

import "github.com/sarchlab/wsnsim/sim"

// DefaultRxSensitivity is the weakest signal, in dBm, that a receiver can
// still decode.
const DefaultRxSensitivity = -101.0

// LinkResult is the outcome of one transmission attempt.
type LinkResult struct {
	Delivered  bool
	Delay      sim.VTimeInSec
	RxPowerDbm float64
	Distance   float64
}

// A LinkModel decides whether a frame sent from tx reaches rx.
type LinkModel interface {
	Evaluate(tx, rx Position, txPowerDbm float64) LinkResult
}

// Channel is a LinkModel that delivers a frame if the received power is at
// least the receiver sensitivity.
type Channel struct {
	Delay         DelayModel
	Loss          LossModel
	RxSensitivity float64
}

// NewChannel creates a channel with speed-of-light propagation, free-space
// path loss and the default receiver sensitivity.
func NewChannel() *Channel {
	return &Channel{
		Delay:         NewConstantSpeedDelay(),
		Loss:          NewFriisLoss(),
		RxSensitivity: DefaultRxSensitivity,
	}
}

// Evaluate implements LinkModel.
func (c *Channel) Evaluate(tx, rx Position, txPowerDbm float64) LinkResult {
	rxPower := c.Loss.RxPower(txPowerDbm, tx, rx)

	return LinkResult{
		Delivered:  rxPower >= c.RxSensitivity,
		Delay:      c.Delay.Delay(tx, rx),
		RxPowerDbm: rxPower,
		Distance:   tx.DistanceTo(rx),
	}
}
