package phy

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// SpeedOfLight is the propagation speed in vacuum, in meters per second.
const SpeedOfLight = 299792458.0

// Wavelength returns the wavelength in meters of a wave travelling at the
// speed of light.
func (f Freq) Wavelength() float64 {
	if f <= 0 {
		panic("frequency must be positive")
	}

	return SpeedOfLight / float64(f)
}
