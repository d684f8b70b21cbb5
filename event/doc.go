// Package event defines the event model for the pulse bus.
//
// An Event is an immutable envelope: a name drawn from a closed set, a
// payload whose shape is bound to that name, a unique ID, a creation
// timestamp, and a metadata block. Events are created at emission time
// and never mutated afterwards; every transformation produces a copy.
//
// # Typed Event Names
//
// The set of event names is closed and statically known. Each name is
// bound to a payload type through a Def, created once at package
// initialization:
//
//	type OrderCreated struct {
//	    OrderID string
//	    Amount  float64
//	}
//
//	var OrderCreatedDef = event.Define[OrderCreated]("order:created")
//
// Define panics on a duplicate name, the same way net/http panics on a
// duplicate route: registering the same name twice is a programmer
// error, not a runtime condition.
//
// The emitter's generic front (emitter.Emit, emitter.On) accepts a Def
// so that payload types are checked at compile time. Internally the bus
// stores everything keyed by the Name string; the Def exists only at
// the API boundary.
//
// # Immutability
//
// Event is a value type. WithPayload, WithCorrelation and friends
// return copies; the metadata field map is copied on construction and
// on every write. Holding an Event never aliases another holder's view.
package event
