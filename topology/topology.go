package topology

import (
	"net/netip"
)

// Topology is the immutable set of nodes of one experiment. Sensors come
// first, the sink is the last node.
type Topology struct {
	nodes  []Node
	byAddr map[netip.Addr]NodeID
}

// Nodes returns all the nodes, ordered by ID.
func (t *Topology) Nodes() []Node {
	nodes := make([]Node, len(t.nodes))
	copy(nodes, t.nodes)

	return nodes
}

// NumSensors returns the number of sensor nodes.
func (t *Topology) NumSensors() int {
	return len(t.nodes) - 1
}

// Sensors returns the sensor nodes, ordered by ID.
func (t *Topology) Sensors() []Node {
	sensors := make([]Node, t.NumSensors())
	copy(sensors, t.nodes[:t.NumSensors()])

	return sensors
}

// Sink returns the collector node.
func (t *Topology) Sink() Node {
	return t.nodes[len(t.nodes)-1]
}

// Node returns the node with the given ID.
func (t *Topology) Node(id NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(t.nodes) {
		return Node{}, false
	}

	return t.nodes[id], true
}

// AddressOf returns the address of a node.
func (t *Topology) AddressOf(id NodeID) (netip.Addr, bool) {
	n, ok := t.Node(id)
	if !ok {
		return netip.Addr{}, false
	}

	return n.Address, true
}

// NodeByAddress finds the node that owns an address.
func (t *Topology) NodeByAddress(addr netip.Addr) (Node, bool) {
	id, ok := t.byAddr[addr]
	if !ok {
		return Node{}, false
	}

	return t.nodes[id], true
}
