package fwk

// A Wire is a Connection that delivers messages to the routed destination
// immediately, on the sender's goroutine. Wiring is established during
// single-threaded deployment setup; after that the route table is read-only,
// so sends from different components may run concurrently.
type Wire struct {
	name    string
	plugged map[RemotePort]Port
	routes  map[RemotePort]RemotePort
}

// NewWire creates a Wire.
func NewWire(name string) *Wire {
	NameMustBeValid(name)

	return &Wire{
		name:    name,
		plugged: make(map[RemotePort]Port),
		routes:  make(map[RemotePort]RemotePort),
	}
}

// Name returns the name of the wire.
func (w *Wire) Name() string {
	return w.name
}

// PlugIn registers a port as an endpoint of the wire.
func (w *Wire) PlugIn(port Port) {
	remote := port.AsRemote()
	if _, found := w.plugged[remote]; found {
		panic("port " + port.Name() + " is already plugged in")
	}

	w.plugged[remote] = port
	port.SetConnection(w)
}

// Unplug removes a port and any route that starts at it.
func (w *Wire) Unplug(port Port) {
	remote := port.AsRemote()
	if _, found := w.plugged[remote]; !found {
		panic("port " + port.Name() + " is not plugged in")
	}

	delete(w.plugged, remote)
	delete(w.routes, remote)
}

// Connect routes messages sent from src to dst. A source port can have one
// destination; connecting it twice is a wiring mistake.
func (w *Wire) Connect(src, dst Port) {
	w.portMustBePlugged(src)
	w.portMustBePlugged(dst)

	if src.AsRemote() == dst.AsRemote() {
		panic("connecting port " + src.Name() + " to itself")
	}

	if _, found := w.routes[src.AsRemote()]; found {
		panic("port " + src.Name() + " is already connected")
	}

	w.routes[src.AsRemote()] = dst.AsRemote()
}

// Forward stamps the routed destination on the message and delivers it. The
// delivery result, including a full destination queue, is returned to the
// sender.
func (w *Wire) Forward(msg Msg) *SendError {
	src := msg.Meta().Src

	dst, found := w.routes[src]
	if !found {
		return NewSendError("not connected")
	}

	msg.Meta().Dst = dst

	return w.plugged[dst].Deliver(msg)
}

func (w *Wire) portMustBePlugged(port Port) {
	if _, found := w.plugged[port.AsRemote()]; !found {
		panic("port " + port.Name() + " is not plugged in")
	}
}
