// Package topology places the sensor nodes and the sink and gives every node
// an address.
package topology

import (
	"fmt"
	"net/netip"

	"github.com/sarchlab/wsnsim/phy"
)

// NodeID identifies a node in a topology. IDs are dense, starting at 0.
type NodeID int

// Role tells what a node does in the network.
type Role int

// The roles of nodes.
const (
	RoleSensor Role = iota
	RoleSink
)

func (r Role) String() string {
	switch r {
	case RoleSensor:
		return "Sensor"
	case RoleSink:
		return "Sink"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// MarshalText makes roles readable in JSON output.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// A Node is a radio node at a fixed position.
type Node struct {
	ID       NodeID       `json:"id"`
	Role     Role         `json:"role"`
	Position phy.Position `json:"position"`
	Address  netip.Addr   `json:"address"`
}

// Name returns a human readable name such as "Sensor[3]".
func (n Node) Name() string {
	return fmt.Sprintf("%s[%d]", n.Role, n.ID)
}
