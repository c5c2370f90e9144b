package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"ticketcart/internal/models"
)

// MockMarketplace is an in-memory marketplace API used when no backend
// credentials are configured. Every checkout confirms after a configurable
// number of status polls, which makes the full redirect/reconcile loop
// exercisable locally.
type MockMarketplace struct {
	mu sync.Mutex

	// DenyPurchases makes every ceiling check fail.
	DenyPurchases bool
	// ConfirmSessions controls the session-token fast path.
	ConfirmSessions bool
	// ConfirmAfterPolls is the number of negative sale-status polls before
	// a positive one; negative values never confirm.
	ConfirmAfterPolls int

	polls    int
	sessions int
	released [][]models.ReservationGroup
}

// NewMockMarketplace creates a mock that confirms on the fast path.
func NewMockMarketplace() *MockMarketplace {
	log.Println("Marketplace API: using mock (no backend credentials provided)")
	return &MockMarketplace{ConfirmSessions: true}
}

func (m *MockMarketplace) CheckTicketCeiling(ctx context.Context, eventID, additionalQuantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.DenyPurchases, nil
}

func (m *MockMarketplace) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions++
	m.polls = 0
	token := fmt.Sprintf("mock-session-%d", m.sessions)
	log.Printf("Mock marketplace: checkout session %s for buyer %d (%d line items, %d reservation groups)",
		token, req.BuyerID, len(req.LineItems), len(req.ReservationGroups))
	return &CheckoutSessionResponse{
		RedirectURL: "/payment/callback?session_token=" + token,
	}, nil
}

func (m *MockMarketplace) ConfirmSession(ctx context.Context, sessionToken string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ConfirmSessions && sessionToken != "", nil
}

func (m *MockMarketplace) CheckSaleStatus(ctx context.Context, clientRef string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConfirmAfterPolls < 0 {
		return false, nil
	}
	m.polls++
	return m.polls > m.ConfirmAfterPolls, nil
}

func (m *MockMarketplace) ReleaseReservations(ctx context.Context, groups []models.ReservationGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = append(m.released, groups)
	log.Printf("Mock marketplace: released %d reservation group(s)", len(groups))
	return nil
}

// ReleasedGroups returns every release call seen so far.
func (m *MockMarketplace) ReleasedGroups() [][]models.ReservationGroup {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]models.ReservationGroup(nil), m.released...)
}
