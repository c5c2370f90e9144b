package services

import (
	"context"
	"sync"

	"ticketcart/internal/models"

	"github.com/stretchr/testify/mock"
)

// mockAPI is a testify mock of the MarketplaceAPI
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) CheckTicketCeiling(ctx context.Context, eventID, additionalQuantity int) (bool, error) {
	args := m.Called(ctx, eventID, additionalQuantity)
	return args.Bool(0), args.Error(1)
}

func (m *mockAPI) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*CheckoutSessionResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) ConfirmSession(ctx context.Context, sessionToken string) (bool, error) {
	args := m.Called(ctx, sessionToken)
	return args.Bool(0), args.Error(1)
}

func (m *mockAPI) CheckSaleStatus(ctx context.Context, clientRef string) (bool, error) {
	args := m.Called(ctx, clientRef)
	return args.Bool(0), args.Error(1)
}

func (m *mockAPI) ReleaseReservations(ctx context.Context, groups []models.ReservationGroup) error {
	args := m.Called(ctx, groups)
	return args.Error(0)
}

// memCart is an in-memory CartStore
type memCart struct {
	mu    sync.Mutex
	items []models.CartLineItem
}

func (c *memCart) Items() []models.CartLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartLineItem(nil), c.items...)
}

func (c *memCart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

func (c *memCart) Restore(items []models.CartLineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]models.CartLineItem(nil), items...)
}

// memAttempts is an in-memory AttemptStore
type memAttempts struct {
	mu       sync.Mutex
	state    *models.CheckoutAttemptState
	failSave bool
	saves    int
	deletes  int
}

func (a *memAttempts) SaveAttempt(ctx context.Context, state *models.CheckoutAttemptState) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failSave {
		return context.DeadlineExceeded
	}
	a.saves++
	copied := *state
	a.state = &copied
	return nil
}

func (a *memAttempts) LoadAttempt(ctx context.Context) (*models.CheckoutAttemptState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == nil {
		return nil, models.ErrNoPendingAttempt
	}
	copied := *a.state
	return &copied, nil
}

func (a *memAttempts) DeleteAttempt(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deletes++
	a.state = nil
	return nil
}

func (a *memAttempts) HasAttempt(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state != nil, nil
}
