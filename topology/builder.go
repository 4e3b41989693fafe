package topology

import (
	"math"
	"math/rand"
	"net/netip"

	"github.com/sarchlab/wsnsim/config"
	"github.com/sarchlab/wsnsim/phy"
)

// Builder can build topologies.
type Builder struct {
	numSensors      int
	region          config.Region
	sinkPosition    *phy.Position
	sensorPositions []phy.Position
	seed            int64
	addressBase     netip.Prefix
}

// MakeBuilder creates a builder with the default 30 m x 30 m region and the
// 10.1.1.0/24 address space.
func MakeBuilder() Builder {
	return Builder{
		region:      config.Region{Width: 30, Height: 30},
		seed:        1,
		addressBase: netip.MustParsePrefix("10.1.1.0/24"),
	}
}

// WithNumSensors sets the number of sensors.
func (b Builder) WithNumSensors(n int) Builder {
	b.numSensors = n
	return b
}

// WithRegion sets the area where sensors are randomly placed.
func (b Builder) WithRegion(r config.Region) Builder {
	b.region = r
	return b
}

// WithSinkPosition places the sink. By default the sink is at the center of
// the region.
func (b Builder) WithSinkPosition(p phy.Position) Builder {
	b.sinkPosition = &p
	return b
}

// WithSensorPositions places the sensors at the given positions instead of
// randomly.
func (b Builder) WithSensorPositions(positions []phy.Position) Builder {
	b.sensorPositions = positions
	return b
}

// WithSeed sets the seed of the random placement.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithAddressBase sets the network from which addresses are allocated.
func (b Builder) WithAddressBase(prefix netip.Prefix) Builder {
	b.addressBase = prefix
	return b
}

// WithConfig copies the topology parameters of an experiment configuration.
func (b Builder) WithConfig(c config.Config) (Builder, error) {
	prefix, err := netip.ParsePrefix(c.AddressBase)
	if err != nil {
		return b, config.Errorf("address_base", "is not a prefix: %v", err)
	}

	b = b.WithNumSensors(c.NumSensors).
		WithRegion(c.Region).
		WithSinkPosition(c.Sink()).
		WithSensorPositions(c.SensorPositions).
		WithSeed(c.Seed).
		WithAddressBase(prefix)

	return b, nil
}

func (b Builder) parametersMustBeValid() error {
	if b.numSensors < 0 {
		return config.Errorf("n_sensors", "must not be negative, got %d",
			b.numSensors)
	}

	extents := []struct {
		field string
		value float64
	}{
		{"region.width", b.region.Width},
		{"region.height", b.region.Height},
	}
	for _, e := range extents {
		if math.IsNaN(e.value) || math.IsInf(e.value, 0) || e.value < 0 {
			return config.Errorf(e.field,
				"must be a non-negative number, got %v", e.value)
		}
	}

	if b.sinkPosition != nil && !b.sinkPosition.IsFinite() {
		return config.Errorf("sink_position", "must be finite, got %s",
			b.sinkPosition)
	}

	if len(b.sensorPositions) > 0 {
		if len(b.sensorPositions) != b.numSensors {
			return config.Errorf("sensor_positions",
				"has %d entries for %d sensors",
				len(b.sensorPositions), b.numSensors)
		}

		for _, p := range b.sensorPositions {
			if !p.IsFinite() {
				return config.Errorf("sensor_positions",
					"must be finite, got %s", p)
			}
		}
	}

	if !b.addressBase.IsValid() || !b.addressBase.Addr().Is4() {
		return config.Errorf("address_base", "must be an IPv4 prefix")
	}

	return nil
}

// Build places the nodes and allocates their addresses.
func (b Builder) Build() (*Topology, error) {
	if err := b.parametersMustBeValid(); err != nil {
		return nil, err
	}

	addrs, err := allocateAddresses(b.addressBase, b.numSensors+1)
	if err != nil {
		return nil, err
	}

	t := &Topology{
		nodes:  make([]Node, 0, b.numSensors+1),
		byAddr: make(map[netip.Addr]NodeID, b.numSensors+1),
	}

	positions := b.placeSensors()
	for i, p := range positions {
		t.add(Node{
			ID:       NodeID(i),
			Role:     RoleSensor,
			Position: p,
			Address:  addrs[i],
		})
	}

	sink := phy.Position{X: b.region.Width / 2, Y: b.region.Height / 2}
	if b.sinkPosition != nil {
		sink = *b.sinkPosition
	}

	t.add(Node{
		ID:       NodeID(b.numSensors),
		Role:     RoleSink,
		Position: sink,
		Address:  addrs[b.numSensors],
	})

	return t, nil
}

func (t *Topology) add(n Node) {
	t.nodes = append(t.nodes, n)
	t.byAddr[n.Address] = n.ID
}

func (b Builder) placeSensors() []phy.Position {
	if len(b.sensorPositions) > 0 {
		positions := make([]phy.Position, len(b.sensorPositions))
		copy(positions, b.sensorPositions)

		return positions
	}

	rng := rand.New(rand.NewSource(b.seed))
	positions := make([]phy.Position, b.numSensors)

	for i := range positions {
		positions[i] = phy.Position{
			X: rng.Float64() * b.region.Width,
			Y: rng.Float64() * b.region.Height,
		}
	}

	return positions
}
