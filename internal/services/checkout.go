package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"ticketcart/internal/cart"
	"ticketcart/internal/models"
)

// CheckoutService turns the current cart into an external payment session.
// It is the single point where the client asks the backend to hold seats;
// the backend stays the authority on reservation TTL and conflicts.
type CheckoutService struct {
	api      MarketplaceAPI
	cart     CartStore
	attempts AttemptStore
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(api MarketplaceAPI, cartStore CartStore, attempts AttemptStore) *CheckoutService {
	return &CheckoutService{
		api:      api,
		cart:     cartStore,
		attempts: attempts,
	}
}

// Initiate validates the cart, creates a payment session and persists the
// pending attempt. The attempt state is written before the redirect URL is
// handed back, so a crash between persistence and navigation leaves a
// releasable record rather than a dangling hold.
func (s *CheckoutService) Initiate(ctx context.Context, user *models.User) (string, error) {
	if !user.CanCheckout() {
		return "", models.ErrNotAuthenticated
	}

	items := s.cart.Items()
	if len(items) == 0 {
		return "", models.ErrEmptyCart
	}
	if err := validateAddressing(items); err != nil {
		return "", err
	}

	req := &CheckoutSessionRequest{
		LineItems:         buildLineItems(items),
		ReservationGroups: cart.ReservationGroups(items),
		BuyerID:           user.ID,
		BuyerEmail:        user.Email,
	}

	resp, err := s.api.CreateCheckoutSession(ctx, req)
	if err != nil {
		// No session means no hold was taken; nothing to persist or release.
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	state := &models.CheckoutAttemptState{
		ReservationGroups: req.ReservationGroups,
		ClientRef:         strconv.Itoa(user.ID),
		CartSnapshot:      items,
		CreatedAt:         time.Now(),
	}
	if err := s.attempts.SaveAttempt(ctx, state); err != nil {
		// The hold exists but cannot be tracked locally; give it back now
		// rather than leaving it to the backend TTL.
		if relErr := s.api.ReleaseReservations(ctx, state.ReservationGroups); relErr != nil {
			log.Printf("Checkout: releasing untracked reservation failed: %v", relErr)
		}
		return "", fmt.Errorf("failed to persist checkout attempt: %w", err)
	}

	return resp.RedirectURL, nil
}

// validateAddressing checks that every line item resolves to exactly one
// addressing mode: seat-managed sectors carry explicit ticket ids, general
// sectors carry a positive quantity.
func validateAddressing(items []models.CartLineItem) error {
	for i := range items {
		item := &items[i]
		if item.EventID <= 0 || item.PlaceID <= 0 {
			return fmt.Errorf("item %q (%s): %w", item.ID, item.SectorName, models.ErrInvalidPlaceOrSector)
		}
		if item.SeatManaged() {
			if len(item.TicketIDs) == 0 {
				return fmt.Errorf("item %q (%s): %w", item.ID, item.SectorName, models.ErrMissingSeatSelection)
			}
			continue
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %q (%s): %w", item.ID, item.SectorName, models.ErrInvalidPlaceOrSector)
		}
	}
	return nil
}

// buildLineItems converts cart items to the provider-facing payment lines.
func buildLineItems(items []models.CartLineItem) []CheckoutLineItem {
	lines := make([]CheckoutLineItem, 0, len(items))
	for i := range items {
		item := &items[i]
		name := item.EventName
		if item.SectorName != "" {
			name = name + " - " + item.SectorName
		}
		lines = append(lines, CheckoutLineItem{
			Name:       name,
			UnitAmount: item.Price,
			Quantity:   item.Quantity,
		})
	}
	return lines
}
