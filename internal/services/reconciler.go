package services

import (
	"context"
	"errors"
	"log"
	"time"

	"ticketcart/internal/models"
)

const (
	// DefaultPollAttempts bounds the status polling after the fast path.
	DefaultPollAttempts = 8
	// DefaultPollInterval separates consecutive status polls.
	DefaultPollInterval = 1500 * time.Millisecond
)

// ReconcilerConfig tunes the polling protocol. Zero values fall back to the
// defaults above.
type ReconcilerConfig struct {
	PollAttempts int
	PollInterval time.Duration
}

// Reconciler determines the outcome of a checkout attempt after the user
// returns from the external payment flow: a session-token fast path first,
// then a bounded sequence of interval-delayed status polls. Ambiguity is
// pessimistic: anything short of a positive answer within the budget counts
// as unconfirmed and releases the reservation.
type Reconciler struct {
	api      MarketplaceAPI
	cart     CartStore
	attempts AttemptStore
	release  Releaser
	config   ReconcilerConfig
}

// NewReconciler creates a new confirmation reconciler
func NewReconciler(api MarketplaceAPI, cartStore CartStore, attempts AttemptStore, release Releaser, config ReconcilerConfig) *Reconciler {
	if config.PollAttempts <= 0 {
		config.PollAttempts = DefaultPollAttempts
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	return &Reconciler{
		api:      api,
		cart:     cartStore,
		attempts: attempts,
		release:  release,
		config:   config,
	}
}

// Reconcile resolves the pending attempt to a terminal outcome. Cancelling
// ctx stops the protocol between polls and returns OutcomePending without
// mutating any state. sessionToken may be empty; the polling fallback then
// carries the whole weight.
func (r *Reconciler) Reconcile(ctx context.Context, sessionToken string) models.CheckoutOutcome {
	state, err := r.attempts.LoadAttempt(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNoPendingAttempt) {
			// Either checkout never started on this client or local state
			// was cleared mid-flow; both end up with nothing to confirm.
			log.Printf("Reconcile: no pending attempt, treating as unconfirmed")
		} else {
			log.Printf("Reconcile: failed to load attempt state: %v", err)
		}
		return r.unconfirmed(ctx, nil)
	}

	if sessionToken != "" {
		confirmed, err := r.api.ConfirmSession(ctx, sessionToken)
		if err != nil {
			log.Printf("Reconcile: session fast path failed, falling back to polling: %v", err)
		} else if confirmed {
			return r.confirmed(ctx)
		}
	}

	timer := time.NewTimer(r.config.PollInterval)
	defer timer.Stop()

	for attempt := 1; attempt <= r.config.PollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return models.OutcomePending
		case <-timer.C:
		}
		timer.Reset(r.config.PollInterval)

		confirmed, err := r.api.CheckSaleStatus(ctx, state.ClientRef)
		if err != nil {
			// Transient errors count as a negative attempt, never an abort.
			log.Printf("Reconcile: poll %d/%d failed: %v", attempt, r.config.PollAttempts, err)
			continue
		}
		if confirmed {
			return r.confirmed(ctx)
		}
	}

	log.Printf("Reconcile: poll budget exhausted, treating as unconfirmed")
	return r.unconfirmed(ctx, state)
}

// confirmed clears the cart and every persisted checkout key.
func (r *Reconciler) confirmed(ctx context.Context) models.CheckoutOutcome {
	if ctx.Err() != nil {
		return models.OutcomePending
	}
	r.cart.Clear()
	if err := r.attempts.DeleteAttempt(ctx); err != nil {
		log.Printf("Reconcile: failed to delete attempt state after confirmation: %v", err)
	}
	return models.OutcomeConfirmed
}

// unconfirmed releases the held reservation and restores the cart from the
// persisted snapshot so the buyer can retry without re-selecting seats.
func (r *Reconciler) unconfirmed(ctx context.Context, state *models.CheckoutAttemptState) models.CheckoutOutcome {
	if ctx.Err() != nil {
		return models.OutcomePending
	}
	if err := r.release.Release(context.WithoutCancel(ctx)); err != nil {
		log.Printf("Reconcile: release after unconfirmed outcome failed: %v", err)
	}
	if state != nil && len(state.CartSnapshot) > 0 {
		r.cart.Restore(state.CartSnapshot)
	}
	return models.OutcomeUnconfirmed
}
