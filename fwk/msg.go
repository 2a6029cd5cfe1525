package fwk

// A Msg is a piece of information that is transferred between components.
//
// Concrete messages embed MsgMeta and carry their arguments as plain fields.
// The arguments are captured by value when the message is built, so a message
// sitting in a queue stays unchanged no matter what the producer does
// afterwards. The dynamic type of the message selects the handler in the
// consuming component's dispatch switch.
type Msg interface {
	Meta() *MsgMeta
	Clone() Msg
}

// MsgMeta contains the meta data that is attached to every message.
type MsgMeta struct {
	ID       string
	Src, Dst RemotePort
}

// A RemotePort is the globally unique name of a port, used to refer to the
// port from messages and routing tables.
type RemotePort string
