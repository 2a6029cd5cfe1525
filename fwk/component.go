// Package fwk provides the kernel of the component framework: messages,
// ports, buffers, the queued-component dispatch base, the wire that routes
// messages between ports, and the event engines that drive periodic
// activity.
package fwk

import "sync"

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Component is an element of a deployment. It owns ports and exchanges
// messages with other components through them. Each component instance
// processes its messages single-threaded; the framework never runs two
// handlers of one component concurrently.
type Component interface {
	Named
	Hookable
	PortOwner
}

// ComponentBase provides the functions that other components can use.
type ComponentBase struct {
	HookableBase
	*PortOwnerBase
	sync.Mutex

	name string
}

// NewComponentBase creates a new ComponentBase.
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	c := new(ComponentBase)
	c.name = name
	c.PortOwnerBase = NewPortOwnerBase()

	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}
