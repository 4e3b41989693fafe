package traffic

import (
	"github.com/sarchlab/wsnsim/phy"
	"github.com/sarchlab/wsnsim/sim"
	"github.com/sarchlab/wsnsim/topology"
)

// Params describe the traffic of an experiment.
type Params struct {
	Port       uint16
	StartTime  sim.VTimeInSec
	StopTime   sim.VTimeInSec
	Interval   sim.VTimeInSec
	PacketSize int
	TxPower    float64
	MaxPackets uint64
}

// Applications are the server and the clients installed on a topology.
type Applications struct {
	Server  *Server
	Clients []*Client
}

// Sent returns the number of packets sent by all the clients.
func (a Applications) Sent() uint64 {
	var sent uint64
	for _, c := range a.Clients {
		sent += c.Sent()
	}

	return sent
}

// Install puts a server on the sink and a client on every sensor. The server
// runs from time 0 and the clients from the start time. Everything stops at
// the stop time.
func Install(
	scheduler Scheduler,
	topo *topology.Topology,
	link phy.LinkModel,
	recorder FlowRecorder,
	params Params,
) (Applications, error) {
	server := NewServer(scheduler, topo.Sink(), params.Port, recorder)
	if err := server.Start(0); err != nil {
		return Applications{}, err
	}

	if err := server.Stop(params.StopTime); err != nil {
		return Applications{}, err
	}

	builder := MakeClientBuilder().
		WithScheduler(scheduler).
		WithLink(link).
		WithRecorder(recorder).
		WithInterval(params.Interval).
		WithPacketSize(params.PacketSize).
		WithTxPower(params.TxPower).
		WithMaxPackets(params.MaxPackets)

	apps := Applications{Server: server}
	for _, node := range topo.Sensors() {
		client := builder.Build(node, server)

		if err := client.Start(params.StartTime); err != nil {
			return Applications{}, err
		}

		if err := client.Stop(params.StopTime); err != nil {
			return Applications{}, err
		}

		apps.Clients = append(apps.Clients, client)
	}

	return apps, nil
}
