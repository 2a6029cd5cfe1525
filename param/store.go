package param

import (
	"log"
	"sort"
	"sync"
)

// A Store holds the parameters of one deployment. A value and its validity
// are read and written under one lock, so a reader can never observe a value
// paired with a validity that belongs to another update.
type Store struct {
	lock    sync.Mutex
	entries map[ID]*entry
}

type entry struct {
	param    Float32Param
	listener UpdateListener

	value    float32
	validity Validity
}

// NewStore creates an empty parameter store.
func NewStore() *Store {
	return &Store{entries: make(map[ID]*entry)}
}

// Register adds a parameter to the store. The parameter starts at its
// default value with Default validity. Registering an ID twice panics.
func (s *Store) Register(p Float32Param, l UpdateListener) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.entries[p.ID]; ok {
		log.Panicf("parameter %d (%s) is already registered", p.ID, p.Name)
	}

	s.entries[p.ID] = &entry{
		param:    p,
		listener: l,
		value:    p.Default,
		validity: Default,
	}
}

// Float32 returns the current value of a parameter together with its
// validity. Reading an unregistered ID panics.
func (s *Store) Float32(id ID) (float32, Validity) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e := s.mustEntry(id)

	return e.value, e.validity
}

// SetFloat32 updates a parameter from outside. A value that passes
// validation is stored with Valid validity and the registered listener is
// notified before SetFloat32 returns. A rejected value is stored with
// Invalid validity, the listener is not notified, and the validation error
// is returned.
func (s *Store) SetFloat32(id ID, v float32) error {
	listener, err := s.commitFloat32(id, v)
	if err != nil {
		return err
	}

	// Outside the lock: the listener typically reads the store back.
	if listener != nil {
		listener.ParameterUpdated(id)
	}

	return nil
}

func (s *Store) commitFloat32(id ID, v float32) (UpdateListener, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e := s.mustEntry(id)

	if e.param.Validate != nil {
		if err := e.param.Validate(v); err != nil {
			e.value = v
			e.validity = Invalid

			return nil, err
		}
	}

	e.value = v
	e.validity = Valid

	return e.listener, nil
}

// Snapshot returns the state of every registered parameter, ordered by ID.
func (s *Store) Snapshot() []State {
	s.lock.Lock()
	defer s.lock.Unlock()

	states := make([]State, 0, len(s.entries))
	for _, e := range s.entries {
		states = append(states, State{
			ID:       e.param.ID,
			Name:     e.param.Name,
			Value:    e.value,
			Validity: e.validity,
		})
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].ID < states[j].ID
	})

	return states
}

func (s *Store) mustEntry(id ID) *entry {
	e, ok := s.entries[id]
	if !ok {
		log.Panicf("parameter %d is not registered", id)
	}

	return e
}
