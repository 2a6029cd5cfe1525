package fwk

// SendError marks a failed message transfer. The Reason tells the producer
// what went wrong, so overflow and wiring problems stay observable instead of
// disappearing into a dropped message.
type SendError struct {
	Reason string
}

// NewSendError creates a SendError.
func NewSendError(reason string) *SendError {
	return &SendError{Reason: reason}
}

// A Connection is responsible for delivering messages to their destinations.
//
// Delivery is synchronous. Forwarding a message runs the destination port's
// Deliver on the caller's goroutine, so the producer observes the delivery
// result (including a full destination queue) directly as the return value of
// Port.Send.
type Connection interface {
	Named

	// PlugIn registers a port as an endpoint of this connection.
	PlugIn(port Port)

	// Unplug removes a port from this connection.
	Unplug(port Port)

	// Connect establishes a one-to-one route from an output port to an input
	// port. Both ports must be plugged in first.
	Connect(src, dst Port)

	// Forward routes a message from its source port to the connected
	// destination.
	Forward(msg Msg) *SendError
}
