// Package monitoring turns a running deployment into a small web server so
// an operator can watch and poke it from a browser: pause and resume the
// engine, tick rate groups, inspect component state, and read the latest
// telemetry, events, and parameter values.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/fwk"
	"github.com/openfsw/kestrel/monitoring/web"
	"github.com/openfsw/kestrel/param"
	"github.com/openfsw/kestrel/telemetry"
)

// A queueOwner is a component that funnels its messages through one central
// queue.
type queueOwner interface {
	MessageQueue() fwk.Buffer
	OverflowCount() uint64
}

type tickingComponent interface {
	TickLater()
}

// Monitor turns a deployment into a server and allows external monitoring
// and controlling of the deployment.
type Monitor struct {
	engine     fwk.Engine
	components []fwk.Component
	queues     []queueOwner
	portNumber int
	actualPort int

	events    *events.Reporter
	telemetry *telemetry.Registry
	params    *param.Store

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that drives the deployment.
func (m *Monitor) RegisterEngine(e fwk.Engine) {
	m.engine = e
}

// RegisterComponent registers a component to be monitored. Components with a
// central message queue also show up in the queue report.
func (m *Monitor) RegisterComponent(c fwk.Component) {
	m.components = append(m.components, c)

	if qo, ok := c.(queueOwner); ok {
		m.queues = append(m.queues, qo)
	}
}

// RegisterDeploymentServices registers the services whose state the monitor
// reports.
func (m *Monitor) RegisterDeploymentServices(
	rep *events.Reporter,
	reg *telemetry.Registry,
	store *param.Store,
) {
	m.events = rep
	m.telemetry = reg
	m.params = store
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:    fwk.GetIDGenerator().Generate(),
		Name:  name,
		Total: total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars)-1)
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts the monitor as a web server, on the configured port or
// a free one.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/tick/{name}", m.tick)
	r.HandleFunc("/api/components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/queues", m.listQueues)
	r.HandleFunc("/api/telemetry", m.listTelemetry)
	r.HandleFunc("/api/events", m.listEvents)
	r.HandleFunc("/api/params", m.listParams)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.actualPort = listener.Addr().(*net.TCPAddr).Port

	fmt.Fprintf(os.Stderr, "Monitoring deployment with %s\n", m.URL())

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

// URL returns the address of the monitoring server. It is only valid after
// StartServer has been called.
func (m *Monitor) URL() string {
	return fmt.Sprintf("http://localhost:%d", m.actualPort)
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

func (m *Monitor) run(_ http.ResponseWriter, _ *http.Request) {
	go func() {
		err := m.engine.Run()
		if err != nil {
			panic(err)
		}
	}()
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, c := range m.components {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "\"%s\"", c.Name())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) tick(w http.ResponseWriter, r *http.Request) {
	compName := mux.Vars(r)["name"]

	comp := m.findComponentOr404(w, compName)
	if comp == nil {
		return
	}

	tickingComp, ok := comp.(tickingComponent)
	if !ok {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tickingComp.TickLater()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) listComponentDetails(
	w http.ResponseWriter,
	r *http.Request,
) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		dieOnErr(err)
	}

	name := req.CompName
	fields := strings.Split(req.FieldName, ".")

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(fields)
	dieOnErr(err)

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type queueStatus struct {
	Queue    string `json:"queue"`
	Level    int    `json:"level"`
	Capacity int    `json:"capacity"`
	Overflow uint64 `json:"overflow"`
}

func (m *Monitor) listQueues(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := m.queuesParseParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	statuses := m.sortAndSelectQueues(sortMethod, limit, offset)

	b, err := json.Marshal(statuses)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func (*Monitor) queuesParseParams(
	r *http.Request,
) (sortMethod string, limit, offset int, err error) {
	sortMethod = r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}
	if sortMethod != "level" && sortMethod != "percent" {
		errStr := fmt.Sprintf(
			"Invalid sort method: %s. Allowed values are `level` and `percent`",
			sortMethod)
		return "", 0, 0, errors.New(errStr)
	}

	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "0"
	}
	limit, err = strconv.Atoi(limitStr)
	if err != nil {
		return sortMethod, 0, 0, err
	}

	offsetStr := r.URL.Query().Get("offset")
	if offsetStr == "" {
		offsetStr = "0"
	}
	offset, err = strconv.Atoi(offsetStr)
	if err != nil {
		return sortMethod, limit, 0, err
	}

	return sortMethod, limit, offset, nil
}

func queuePercent(s queueStatus) float64 {
	return float64(s.Level) / float64(s.Capacity)
}

func (m *Monitor) sortAndSelectQueues(
	sortMethod string,
	limit, offset int,
) []queueStatus {
	statuses := make([]queueStatus, 0, len(m.queues))
	for _, q := range m.queues {
		buf := q.MessageQueue()
		statuses = append(statuses, queueStatus{
			Queue:    buf.Name(),
			Level:    buf.Size(),
			Capacity: buf.Capacity(),
			Overflow: q.OverflowCount(),
		})
	}

	if sortMethod == "level" {
		sort.Slice(statuses, func(i, j int) bool {
			if statuses[i].Level != statuses[j].Level {
				return statuses[i].Level > statuses[j].Level
			}

			return queuePercent(statuses[i]) > queuePercent(statuses[j])
		})
	} else {
		sort.Slice(statuses, func(i, j int) bool {
			pI := queuePercent(statuses[i])
			pJ := queuePercent(statuses[j])
			if pI != pJ {
				return pI > pJ
			}

			return statuses[i].Level > statuses[j].Level
		})
	}

	if offset > len(statuses) {
		offset = len(statuses)
	}

	end := len(statuses)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return statuses[offset:end]
}

func (m *Monitor) listTelemetry(w http.ResponseWriter, _ *http.Request) {
	b, err := json.Marshal(m.telemetry.Latest())
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func (m *Monitor) listEvents(w http.ResponseWriter, _ *http.Request) {
	b, err := json.Marshal(m.events.Recent())
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

type paramStatus struct {
	ID       uint32  `json:"id"`
	Name     string  `json:"name"`
	Value    float32 `json:"value"`
	Validity string  `json:"validity"`
}

func (m *Monitor) listParams(w http.ResponseWriter, _ *http.Request) {
	states := m.params.Snapshot()

	statuses := make([]paramStatus, 0, len(states))
	for _, st := range states {
		statuses = append(statuses, paramStatus{
			ID:       uint32(st.ID),
			Name:     st.Name,
			Value:    st.Value,
			Validity: st.Validity.String(),
		})
	}

	b, err := json.Marshal(statuses)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) fwk.Component {
	var component fwk.Component
	for _, c := range m.components {
		if c.Name() == name {
			component = c
		}
	}

	if component == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Component not found"))
		dieOnErr(err)
	}

	return component
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bytes, err := json.Marshal(m.progressBars)
	m.progressBarsLock.Unlock()
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	b, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
