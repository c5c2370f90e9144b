package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ticketcart/internal/models"
)

// ReleaseService gives a held reservation back to inventory. Release is
// advisory cleanup: backend errors are logged and swallowed, the backend's
// TTL expiry being the authoritative fallback, and the local attempt keys
// are deleted whether or not the backend call lands, so a persisted attempt
// is released at most once.
type ReleaseService struct {
	api      MarketplaceAPI
	attempts AttemptStore
}

// NewReleaseService creates a new release service
func NewReleaseService(api MarketplaceAPI, attempts AttemptStore) *ReleaseService {
	return &ReleaseService{api: api, attempts: attempts}
}

// Release sends the persisted reservation groups to the backend release
// endpoint and deletes the local attempt keys. A missing attempt is a no-op.
func (s *ReleaseService) Release(ctx context.Context) error {
	state, err := s.attempts.LoadAttempt(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNoPendingAttempt) {
			return nil
		}
		return fmt.Errorf("failed to load attempt state: %w", err)
	}

	if err := s.api.ReleaseReservations(ctx, state.ReservationGroups); err != nil {
		log.Printf("Release: backend release failed, relying on server-side expiry: %v", err)
	}

	if err := s.attempts.DeleteAttempt(ctx); err != nil {
		return fmt.Errorf("failed to delete attempt state: %w", err)
	}
	return nil
}

// ReleaseStale releases an attempt left behind by an interrupted flow, e.g.
// a crash after checkout started or back-navigation into the cart. Called on
// startup and on entering the checkout page.
func (s *ReleaseService) ReleaseStale(ctx context.Context) {
	has, err := s.attempts.HasAttempt(ctx)
	if err != nil {
		log.Printf("Release: failed to check for stale attempt: %v", err)
		return
	}
	if !has {
		return
	}
	log.Printf("Release: found stale checkout attempt, releasing reservation")
	if err := s.Release(ctx); err != nil {
		log.Printf("Release: stale attempt cleanup failed: %v", err)
	}
}
