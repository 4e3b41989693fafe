// Package monitoring turns a running simulation into a small HTTP server that
// reports its progress and lets users pause it.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
	"github.com/syifan/goseth"

	"github.com/sarchlab/wsnsim/flowstats"
	"github.com/sarchlab/wsnsim/sim"
	"github.com/sarchlab/wsnsim/topology"
)

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	engine      sim.Engine
	topology    *topology.Topology
	flows       *flowstats.Monitor
	portNumber  int
	openBrowser bool

	server   *http.Server
	listener net.Listener
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes the monitor open its page in a browser once it starts.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterTopology registers the nodes to report.
func (m *Monitor) RegisterTopology(t *topology.Topology) {
	m.topology = t
}

// RegisterFlows registers the flow statistics to report.
func (m *Monitor) RegisterFlows(f *flowstats.Monitor) {
	m.flows = f
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/progress", m.progress)
	r.HandleFunc("/api/nodes", m.listNodes)
	r.HandleFunc("/api/node/{id}", m.nodeDetails)
	r.HandleFunc("/api/flows", m.listFlows)
	r.HandleFunc("/api/results", m.results)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panic(err)
		}
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url + "/api/progress"); err != nil {
			logrus.Warnf("cannot open browser: %v", err)
		}
	}

	return url, nil
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

type progressRsp struct {
	Now     float64 `json:"now"`
	SimTime float64 `json:"sim_time"`
	Pending int     `json:"pending"`
	Percent float64 `json:"percent"`
}

func (m *Monitor) progress(w http.ResponseWriter, _ *http.Request) {
	rsp := progressRsp{
		Now:     float64(m.engine.CurrentTime()),
		Pending: m.engine.Pending(),
	}

	if m.flows != nil {
		rsp.SimTime = float64(m.flows.SimTime())
	}

	if rsp.SimTime > 0 {
		rsp.Percent = min(rsp.Now/rsp.SimTime*100, 100)
	}

	writeJSON(w, rsp)
}

type nodeRsp struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Role    string  `json:"role"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Address string  `json:"address"`
}

func toNodeRsp(n topology.Node) nodeRsp {
	return nodeRsp{
		ID:      int(n.ID),
		Name:    n.Name(),
		Role:    n.Role.String(),
		X:       n.Position.X,
		Y:       n.Position.Y,
		Address: n.Address.String(),
	}
}

func (m *Monitor) listNodes(w http.ResponseWriter, _ *http.Request) {
	if m.topologyMissing(w) {
		return
	}

	nodes := m.topology.Nodes()
	rsp := make([]nodeRsp, 0, len(nodes))
	for _, n := range nodes {
		rsp = append(rsp, toNodeRsp(n))
	}

	writeJSON(w, rsp)
}

func (m *Monitor) nodeDetails(w http.ResponseWriter, r *http.Request) {
	if m.topologyMissing(w) {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	node, found := m.topology.Node(topology.NodeID(id))
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Node not found"))
		dieOnErr(err)
		return
	}

	rsp := toNodeRsp(node)

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&rsp)
	serializer.SetMaxDepth(1)
	err = serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) topologyMissing(w http.ResponseWriter) bool {
	if m.topology != nil {
		return false
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	_, err := w.Write([]byte("No topology registered"))
	dieOnErr(err)

	return true
}

func (m *Monitor) flowsMissing(w http.ResponseWriter) bool {
	if m.flows != nil {
		return false
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	_, err := w.Write([]byte("No flow statistics registered"))
	dieOnErr(err)

	return true
}

type flowRsp struct {
	flowstats.Flow
	AvgDelay float64 `json:"avg_delay"`
	PDR      float64 `json:"pdr"`
}

func (m *Monitor) listFlows(w http.ResponseWriter, _ *http.Request) {
	if m.flowsMissing(w) {
		return
	}

	flows := m.flows.Flows()
	rsp := make([]flowRsp, 0, len(flows))
	for _, f := range flows {
		rsp = append(rsp, flowRsp{
			Flow:     f,
			AvgDelay: float64(f.AvgDelay()),
			PDR:      f.PDR(),
		})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) results(w http.ResponseWriter, _ *http.Request) {
	if m.flowsMissing(w) {
		return
	}

	writeJSON(w, m.flows.Snapshot())
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
