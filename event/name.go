package event

import (
	"fmt"
	"sort"
	"sync"
)

// Name identifies an event kind (e.g., "order:created").
// Names form a closed set: only names registered through Define may be
// emitted.
type Name string

// String returns the name as a plain string.
func (n Name) String() string {
	return string(n)
}

// Def binds an event name to its payload type at compile time.
// A Def is created by Define and passed to the emitter's typed entry
// points; the type parameter never exists at runtime, only the Name.
type Def[P any] struct {
	name Name
}

// Name returns the event name this definition is bound to.
func (d Def[P]) Name() Name {
	return d.name
}

// catalog is the process-wide closed set of event names.
var catalog = struct {
	mu    sync.RWMutex
	names map[Name]struct{}
}{
	names: make(map[Name]struct{}),
}

// Define registers an event name bound to payload type P and returns
// its Def. It is intended to be called from package-level var
// declarations.
//
// Define panics if the name is empty or already registered. A duplicate
// registration is a programmer error: two definitions claiming the same
// name with potentially different payload types would defeat the typed
// mapping.
func Define[P any](name Name) Def[P] {
	if name == "" {
		panic("event: Define called with empty name")
	}

	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	if _, exists := catalog.names[name]; exists {
		panic(fmt.Sprintf("event: duplicate definition of %q", name))
	}
	catalog.names[name] = struct{}{}

	return Def[P]{name: name}
}

// Registered reports whether the name belongs to the closed set.
func Registered(name Name) bool {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	_, ok := catalog.names[name]
	return ok
}

// Names returns all registered event names in sorted order.
func Names() []Name {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	names := make([]Name, 0, len(catalog.names))
	for n := range catalog.names {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
