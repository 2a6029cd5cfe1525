// Package mathop defines the arithmetic vocabulary of the math pipeline and
// the messages that carry operations and results between its components.
package mathop

import (
	"fmt"

	"github.com/openfsw/kestrel/fwk"
)

// MathOp selects the arithmetic operation a math request performs.
type MathOp uint8

const (
	// ADD requests val1 + val2.
	ADD MathOp = iota

	// SUB requests val1 - val2.
	SUB

	// MUL requests val1 * val2.
	MUL

	// DIV requests val1 / val2.
	DIV
)

func (op MathOp) String() string {
	switch op {
	case ADD:
		return "ADD"
	case SUB:
		return "SUB"
	case MUL:
		return "MUL"
	case DIV:
		return "DIV"
	}

	return fmt.Sprintf("MathOp(%d)", uint8(op))
}

// OpFromString parses the text form of an operation.
func OpFromString(s string) (MathOp, error) {
	switch s {
	case "ADD":
		return ADD, nil
	case "SUB":
		return SUB, nil
	case "MUL":
		return MUL, nil
	case "DIV":
		return DIV, nil
	}

	return 0, fmt.Errorf("unknown math operation %q", s)
}

// Apply computes the operation with IEEE-754 single-precision semantics.
// Division by zero follows IEEE and yields an infinity or NaN; it is not an
// error. An unknown operation is.
func Apply(op MathOp, v1, v2 float32) (float32, error) {
	switch op {
	case ADD:
		return v1 + v2, nil
	case SUB:
		return v1 - v2, nil
	case MUL:
		return v1 * v2, nil
	case DIV:
		return v1 / v2, nil
	}

	return 0, fmt.Errorf("unknown math operation %d", uint8(op))
}

// An OpReq asks the receiving component to perform one operation.
type OpReq struct {
	fwk.MsgMeta

	Val1 float32
	Op   MathOp
	Val2 float32
}

// Meta returns the meta data of the message.
func (r *OpReq) Meta() *fwk.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned OpReq with a different ID.
func (r *OpReq) Clone() fwk.Msg {
	cloneMsg := *r
	cloneMsg.ID = fwk.GetIDGenerator().Generate()

	return &cloneMsg
}

// An OpRsp carries the result of one operation back to the requester.
type OpRsp struct {
	fwk.MsgMeta

	Result float32
}

// Meta returns the meta data of the message.
func (r *OpRsp) Meta() *fwk.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a cloned OpRsp with a different ID.
func (r *OpRsp) Clone() fwk.Msg {
	cloneMsg := *r
	cloneMsg.ID = fwk.GetIDGenerator().Generate()

	return &cloneMsg
}
