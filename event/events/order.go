package events

import "github.com/dshills/pulse/event"

// Order and payment event definitions.
var (
	// OrderCreated is emitted when a new order is placed.
	OrderCreated = event.Define[OrderCreatedPayload]("order:created")

	// OrderShipped is emitted when an order leaves the warehouse.
	OrderShipped = event.Define[OrderShippedPayload]("order:shipped")

	// PaymentReceived is emitted when a payment settles.
	PaymentReceived = event.Define[PaymentReceivedPayload]("payment:received")
)

// OrderCreatedPayload is the payload for order:created.
type OrderCreatedPayload struct {
	// OrderID identifies the order.
	OrderID string

	// Amount is the order total.
	Amount float64

	// Currency is the ISO 4217 currency code.
	Currency string
}

// OrderShippedPayload is the payload for order:shipped.
type OrderShippedPayload struct {
	// OrderID identifies the order.
	OrderID string

	// Carrier is the shipping carrier.
	Carrier string

	// TrackingID is the carrier's tracking reference.
	TrackingID string
}

// PaymentReceivedPayload is the payload for payment:received.
type PaymentReceivedPayload struct {
	// OrderID identifies the order the payment applies to.
	OrderID string

	// Amount is the settled amount.
	Amount float64
}
