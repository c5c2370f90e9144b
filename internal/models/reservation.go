package models

import "time"

// ReservationGroup is the unit sent to the backend to request, confirm or
// release a reservation, keyed by (event, place, sector). A group carries
// either a de-duplicated list of explicit ticket ids or a bare quantity for
// sectors with no seat management.
type ReservationGroup struct {
	EventID   int   `json:"id_event"`
	PlaceID   int   `json:"id_place"`
	SectorID  int   `json:"id_sector"`
	TicketIDs []int `json:"ids,omitempty"`
	Quantity  int   `json:"quantity"`
}

// Valid reports whether the group may be sent to the backend. A group with
// no ids and a non-positive quantity reserves nothing.
func (g *ReservationGroup) Valid() bool {
	return len(g.TicketIDs) > 0 || g.Quantity > 0
}

// CheckoutAttemptState is the sole durable record that a reservation is
// outstanding. It is written immediately before handing the user to the
// external payment provider and deleted once the outcome is reconciled or
// the reservation released. Its presence at startup, outside an active
// checkout, marks an abandoned attempt.
type CheckoutAttemptState struct {
	ReservationGroups []ReservationGroup `json:"reservation_groups"`
	ClientRef         string             `json:"client_ref"` // buyer identifier used for status polling
	CartSnapshot      []CartLineItem     `json:"cart_snapshot"`
	CreatedAt         time.Time          `json:"created_at"`
}

// CheckoutOutcome is the reconciliation result for a checkout attempt.
type CheckoutOutcome string

const (
	OutcomePending     CheckoutOutcome = "pending" // reconciliation cancelled before a terminal state
	OutcomeConfirmed   CheckoutOutcome = "confirmed"
	OutcomeUnconfirmed CheckoutOutcome = "unconfirmed"
)

func (o CheckoutOutcome) IsTerminal() bool {
	return o == OutcomeConfirmed || o == OutcomeUnconfirmed
}

func (o CheckoutOutcome) String() string {
	return string(o)
}
