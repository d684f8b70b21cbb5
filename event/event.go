package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable envelope for a single emission.
// Events are created by the emitter at emission time and never mutated
// afterwards; all With* helpers return copies.
type Event struct {
	// ID uniquely identifies this emission within the process lifetime.
	ID string

	// Name is the event kind, drawn from the closed set.
	Name Name

	// Payload is the event data. Its concrete type is bound to Name by
	// the Def that registered the name; use PayloadOf to recover it.
	Payload any

	// CreatedAt is when the event was constructed. On a single emitter
	// it is monotonically non-decreasing in emission order.
	CreatedAt time.Time

	// Meta carries standard cross-cutting information.
	Meta Meta
}

// Meta contains standard information attached to every event.
type Meta struct {
	// Source identifies the component that emitted the event.
	Source string

	// CorrelationID links related events (e.g., request/response).
	CorrelationID string

	// Fields holds free-form metadata. The map is copied on
	// construction and on every write.
	Fields map[string]string
}

// Option configures event construction.
type Option func(*Event)

// WithID sets an explicit event ID instead of a generated one.
func WithID(id string) Option {
	return func(e *Event) {
		if id != "" {
			e.ID = id
		}
	}
}

// WithSource sets the emitting component's name.
func WithSource(source string) Option {
	return func(e *Event) {
		e.Meta.Source = source
	}
}

// WithCorrelationID links the event to related emissions.
func WithCorrelationID(id string) Option {
	return func(e *Event) {
		e.Meta.CorrelationID = id
	}
}

// WithField attaches a metadata field.
func WithField(key, value string) Option {
	return func(e *Event) {
		if e.Meta.Fields == nil {
			e.Meta.Fields = make(map[string]string)
		}
		e.Meta.Fields[key] = value
	}
}

// WithCreatedAt sets an explicit creation time. The emitter uses this
// to stamp events from its own clock.
func WithCreatedAt(t time.Time) Option {
	return func(e *Event) {
		e.CreatedAt = t
	}
}

// New constructs an event with a generated ID and the current time.
// Callers normally go through the emitter, which stamps a monotonic
// time and applies per-emission options.
func New(name Name, payload any, opts ...Option) Event {
	e := Event{
		ID:        uuid.NewString(),
		Name:      name,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// WithPayload returns a copy of the event carrying a different payload.
// Middleware uses this to transform an event without mutating the
// original.
func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	e.Meta = e.Meta.clone()
	return e
}

// WithMetaField returns a copy of the event with a metadata field set.
func (e Event) WithMetaField(key, value string) Event {
	e.Meta = e.Meta.clone()
	if e.Meta.Fields == nil {
		e.Meta.Fields = make(map[string]string)
	}
	e.Meta.Fields[key] = value
	return e
}

// WithCorrelation returns a copy of the event with a correlation ID set.
func (e Event) WithCorrelation(correlationID string) Event {
	e.Meta = e.Meta.clone()
	e.Meta.CorrelationID = correlationID
	return e
}

// Field returns a metadata field value, or the empty string.
func (e Event) Field(key string) string {
	return e.Meta.Fields[key]
}

// EventKey returns the event's identity key for deduplication.
// Streams use this as the default Distinct key.
func (e Event) EventKey() any {
	return e.ID
}

// clone deep-copies the metadata block.
func (m Meta) clone() Meta {
	if m.Fields == nil {
		return m
	}
	fields := make(map[string]string, len(m.Fields))
	for k, v := range m.Fields {
		fields[k] = v
	}
	m.Fields = fields
	return m
}

// PayloadOf recovers the typed payload from an event. The second
// return is false if the payload is not of type P.
func PayloadOf[P any](e Event) (P, bool) {
	p, ok := e.Payload.(P)
	return p, ok
}
