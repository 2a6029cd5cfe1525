// Package command implements commanding: opcodes, completion statuses,
// request and response messages, and the dispatcher that routes requests to
// the components that implement them.
package command

import (
	"fmt"

	"github.com/openfsw/kestrel/fwk"
)

// An Opcode identifies one command across a deployment.
type Opcode uint32

// A Seq is the sequence number a command source assigns to one request, so
// completions can be matched to requests.
type Seq uint32

// Status is the completion status carried by a Response.
type Status uint8

const (
	// OK reports successful completion.
	OK Status = iota

	// InvalidOpcode reports a request whose opcode has no route.
	InvalidOpcode

	// ValidationError reports arguments rejected by the implementing
	// component.
	ValidationError

	// FormatError reports arguments that could not be decoded.
	FormatError

	// ExecutionError reports a command that failed while executing.
	ExecutionError

	// Busy reports a component that cannot accept the command now.
	Busy
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case InvalidOpcode:
		return "INVALID_OPCODE"
	case ValidationError:
		return "VALIDATION_ERROR"
	case FormatError:
		return "FORMAT_ERROR"
	case ExecutionError:
		return "EXECUTION_ERROR"
	case Busy:
		return "BUSY"
	}

	return fmt.Sprintf("Status(%d)", uint8(s))
}

// A Request is a command message. Concrete requests are typed messages
// defined by the component that implements the command; they embed
// RequestMeta next to their fwk.MsgMeta.
type Request interface {
	fwk.Msg

	CmdOpcode() Opcode
	CmdSeq() Seq
}

// RequestMeta carries the command identity of a request.
type RequestMeta struct {
	Opcode Opcode
	Seq    Seq
}

// CmdOpcode returns the opcode of the request.
func (m RequestMeta) CmdOpcode() Opcode {
	return m.Opcode
}

// CmdSeq returns the sequence number of the request.
func (m RequestMeta) CmdSeq() Seq {
	return m.Seq
}

// A Response acknowledges the completion of one request.
type Response struct {
	fwk.MsgMeta

	Opcode Opcode
	Seq    Seq
	Status Status
}

// Meta returns the meta data of the message.
func (r *Response) Meta() *fwk.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned Response with a different ID.
func (r *Response) Clone() fwk.Msg {
	cloneMsg := *r
	cloneMsg.ID = fwk.GetIDGenerator().Generate()

	return &cloneMsg
}

// A Completion is the dispatcher's record of one finished command.
type Completion struct {
	Time   float64
	Opcode uint32
	Seq    uint32
	Status string
}

// A Sink receives one Completion per finished command, typically to record
// it.
type Sink interface {
	RecordCompletion(c Completion)
}
