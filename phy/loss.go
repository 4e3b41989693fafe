package phy

import (
	"math"

	"github.com/sirupsen/logrus"
)

// A LossModel computes the received power of a transmission.
type LossModel interface {
	// RxPower returns the power in dBm that arrives at rx when tx transmits
	// with txPowerDbm.
	RxPower(txPowerDbm float64, tx, rx Position) float64
}

// FriisLoss is the free-space path loss model. The received power falls off
// with the square of the distance and depends on the frequency.
type FriisLoss struct {
	Frequency Freq

	// SystemLoss is a dimensionless factor, 1 means no system loss.
	SystemLoss float64

	// MinLoss in dB is the lower bound of the loss, which avoids gains at
	// very short distances where the far-field assumption breaks.
	MinLoss float64
}

// NewFriisLoss returns the free-space model at 5.15 GHz with no system loss.
func NewFriisLoss() FriisLoss {
	return FriisLoss{
		Frequency:  5.15 * GHz,
		SystemLoss: 1,
		MinLoss:    0,
	}
}

// RxPower implements LossModel.
func (m FriisLoss) RxPower(txPowerDbm float64, tx, rx Position) float64 {
	distance := tx.DistanceTo(rx)
	if distance <= 0 {
		return txPowerDbm - m.MinLoss
	}

	lambda := m.Frequency.Wavelength()
	if distance < 3*lambda {
		logrus.Debugf(
			"friis: distance %.4fm is not in the far field (lambda %.4fm)",
			distance, lambda)
	}

	numerator := lambda * lambda
	denominator := 16 * math.Pi * math.Pi * distance * distance * m.SystemLoss
	lossDb := -10 * math.Log10(numerator/denominator)

	if lossDb < m.MinLoss {
		return txPowerDbm - m.MinLoss
	}

	return txPowerDbm - lossDb
}

// LogDistanceLoss models the loss as growing with log of the distance,
// relative to a reference distance.
type LogDistanceLoss struct {
	Exponent          float64
	ReferenceDistance float64
	ReferenceLoss     float64
}

// NewLogDistanceLoss returns the log-distance model with exponent 3 and the
// free-space loss at 1 m and 5.15 GHz as the reference loss.
func NewLogDistanceLoss() LogDistanceLoss {
	return LogDistanceLoss{
		Exponent:          3,
		ReferenceDistance: 1,
		ReferenceLoss:     46.6777,
	}
}

// RxPower implements LossModel.
func (m LogDistanceLoss) RxPower(txPowerDbm float64, tx, rx Position) float64 {
	distance := tx.DistanceTo(rx)
	if distance <= m.ReferenceDistance {
		return txPowerDbm - m.ReferenceLoss
	}

	pathLossDb := 10 * m.Exponent * math.Log10(distance/m.ReferenceDistance)

	return txPowerDbm - m.ReferenceLoss - pathLossDb
}

// ChainedLoss applies a list of loss models one after another. The output
// power of a model is the input power of the next one.
type ChainedLoss []LossModel

// RxPower implements LossModel.
func (c ChainedLoss) RxPower(txPowerDbm float64, tx, rx Position) float64 {
	power := txPowerDbm
	for _, m := range c {
		power = m.RxPower(power, tx, rx)
	}

	return power
}
