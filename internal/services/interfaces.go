package services

import (
	"context"

	"ticketcart/internal/models"
)

// MarketplaceAPI is the narrow contract the checkout lifecycle consumes from
// the sale/reservation backend and its payment gateway.
type MarketplaceAPI interface {
	// CheckTicketCeiling reports whether the buyer may add the given
	// quantity of tickets for an event without exceeding the per-event
	// ceiling, counting tickets already purchased server-side.
	CheckTicketCeiling(ctx context.Context, eventID, additionalQuantity int) (bool, error)

	// CreateCheckoutSession initiates an external payment and implicitly
	// places a reservation hold on the listed seats/quantities.
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSessionResponse, error)

	// ConfirmSession is the fast-path confirmation by provider session token.
	ConfirmSession(ctx context.Context, sessionToken string) (bool, error)

	// CheckSaleStatus is the polling fallback, keyed by buyer identifier.
	CheckSaleStatus(ctx context.Context, clientRef string) (bool, error)

	// ReleaseReservations hands held seats back to inventory. Best-effort:
	// the backend's own TTL expiry is the safety net when it fails.
	ReleaseReservations(ctx context.Context, groups []models.ReservationGroup) error
}

// CartStore is the slice of the cart the checkout lifecycle needs.
type CartStore interface {
	Items() []models.CartLineItem
	Clear()
	Restore(items []models.CartLineItem)
}

// AttemptStore persists the pending checkout attempt across process
// restarts. Written by the checkout initiator, read and deleted by the
// reconciler and the release protocol.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, state *models.CheckoutAttemptState) error
	// LoadAttempt returns models.ErrNoPendingAttempt when nothing is persisted.
	LoadAttempt(ctx context.Context) (*models.CheckoutAttemptState, error)
	DeleteAttempt(ctx context.Context) error
	HasAttempt(ctx context.Context) (bool, error)
}

// Releaser releases whatever reservation the persisted attempt still holds.
type Releaser interface {
	Release(ctx context.Context) error
}

// CheckoutLineItem is one provider-facing payment line.
type CheckoutLineItem struct {
	Name       string `json:"name"`
	UnitAmount int    `json:"unit_amount"` // in cents
	Quantity   int    `json:"quantity"`
}

// CheckoutSessionRequest is the payload for CreateCheckoutSession.
type CheckoutSessionRequest struct {
	LineItems         []CheckoutLineItem        `json:"line_items"`
	ReservationGroups []models.ReservationGroup `json:"reservation_groups"`
	BuyerID           int                       `json:"buyer_id"`
	BuyerEmail        string                    `json:"buyer_email"`
}

// CheckoutSessionResponse carries the external redirect URL.
type CheckoutSessionResponse struct {
	RedirectURL string `json:"redirect_url"`
}
