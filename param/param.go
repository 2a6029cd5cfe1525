// Package param implements the parameter database of a deployment: typed
// configuration values with validity tracking and synchronous update
// notification.
package param

import "fmt"

// ID identifies a parameter. IDs are unique within a deployment.
type ID uint32

// Validity describes how a parameter got its current value.
type Validity uint8

const (
	// Valid marks a value that passed validation on an external update.
	Valid Validity = iota

	// Default marks a value that has never been updated and still carries
	// the registered default.
	Default

	// Invalid marks the rejected value of a failed external update. Read
	// paths must not consume an Invalid value.
	Invalid
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "VALID"
	case Default:
		return "DEFAULT"
	case Invalid:
		return "INVALID"
	}

	return fmt.Sprintf("Validity(%d)", uint8(v))
}

// A Float32Param describes one registerable float32 parameter.
type Float32Param struct {
	ID      ID
	Name    string
	Default float32

	// Validate accepts or rejects an externally supplied value. Nil means
	// every value is accepted.
	Validate func(v float32) error
}

// An UpdateListener is notified after a parameter it registered with is
// committed to a new valid value. The notification runs on the updater's
// goroutine, after the store state is committed, so the listener reads the
// new value back.
type UpdateListener interface {
	ParameterUpdated(id ID)
}

// State is one row of a store snapshot.
type State struct {
	ID       ID
	Name     string
	Value    float32
	Validity Validity
}
