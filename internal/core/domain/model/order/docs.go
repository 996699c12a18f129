// Package order provides domain entities and business logic for the delivery
// order lifecycle. It implements the Order aggregate root with offer rounds,
// state transitions, and the delivery-completion OTP gate.
//
// The package includes:
//   - Order: The aggregate root managing identity, the offer ledger, and lifecycle
//   - Status: A state machine enforcing valid delivery status transitions
//   - Response: The per-offer response lifecycle (pending/accepted/rejected/timeout)
//   - Assignment: An append-only ledger entry recording one offer to one agent
//   - Payment, Address: Value objects for the payment record and addresses
//
// Key business rules:
//   - An agent is attached iff the order is assigned or in active delivery
//   - At most one offer is pending at a time; the ledger is append-only
//   - Retry counting derives from the ledger length, never a separate counter
//   - Delivery completion is gated on OTP verification when the order demands it
//   - COD payments settle automatically on the delivered transition
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
