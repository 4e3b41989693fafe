// Package phy models the wireless medium between two fixed positions.
//
// A LinkModel decides, for a single transmission, whether the frame reaches
// the receiver and how long it takes to get there. Channel combines a
// DelayModel, a LossModel and a receiver sensitivity into such a decision.
// All the models are pure functions of their inputs, so a different radio
// environment can be plugged in without touching the scheduler or the
// traffic generators.
package phy
