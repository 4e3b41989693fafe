package phy

import "github.com/sarchlab/wsnsim/sim"

// A DelayModel computes how long a signal travels between two positions.
type DelayModel interface {
	Delay(tx, rx Position) sim.VTimeInSec
}

// ConstantSpeedDelay assumes the signal travels at a fixed speed.
type ConstantSpeedDelay struct {
	// Speed in meters per second.
	Speed float64
}

// NewConstantSpeedDelay returns a delay model with the speed of light.
func NewConstantSpeedDelay() ConstantSpeedDelay {
	return ConstantSpeedDelay{Speed: SpeedOfLight}
}

// Delay returns distance / speed.
func (m ConstantSpeedDelay) Delay(tx, rx Position) sim.VTimeInSec {
	if m.Speed <= 0 {
		panic("propagation speed must be positive")
	}

	return sim.VTimeInSec(tx.DistanceTo(rx) / m.Speed)
}
