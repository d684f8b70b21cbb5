// Package events defines the built-in event catalog for the pulse bus.
//
// Each definition binds an event name to its payload type via
// event.Define, giving emitters and listeners compile-time payload
// checking:
//
//	emitter.Emit(ctx, em, events.OrderCreated, events.OrderCreatedPayload{
//	    OrderID: "ord-99",
//	    Amount:  150,
//	})
//
// Applications extend the catalog by calling event.Define from their
// own packages; nothing here is special beyond being defined up front.
package events
