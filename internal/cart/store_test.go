package cart

import (
	"context"
	"errors"
	"testing"

	"ticketcart/internal/models"
)

// fakeOracle is a scriptable ticket ceiling oracle
type fakeOracle struct {
	allow bool
	err   error
	calls int
}

func (o *fakeOracle) CheckTicketCeiling(ctx context.Context, eventID, additionalQuantity int) (bool, error) {
	o.calls++
	return o.allow, o.err
}

func generalItem(eventID int, quantity int) models.CartLineItem {
	return models.CartLineItem{
		EventID:    eventID,
		PlaceID:    10,
		SectorID:   0,
		SectorName: "Standing",
		Price:      250,
		Quantity:   quantity,
		EventName:  "Autumn Gala",
	}
}

func seatItem(eventID int, ticketIDs ...int) models.CartLineItem {
	return models.CartLineItem{
		EventID:    eventID,
		PlaceID:    10,
		SectorID:   3,
		SectorName: "Floor Seat 12",
		Price:      500,
		Quantity:   len(ticketIDs),
		TicketIDs:  ticketIDs,
		EventName:  "Autumn Gala",
	}
}

func TestStoreAdd_AssignsIDAndMergesGeneralItems(t *testing.T) {
	store := NewStore(&fakeOracle{allow: true}, 6)

	if err := store.Add(context.Background(), generalItem(1, 2), 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(context.Background(), generalItem(1, 1), 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected general items to merge into one line, got %d", len(items))
	}
	if items[0].ID == "" {
		t.Error("expected an id to be assigned on add")
	}
	if items[0].Quantity != 3 {
		t.Errorf("expected merged quantity 3, got %d", items[0].Quantity)
	}
}

func TestStoreAdd_SeatItemsNeverMerge(t *testing.T) {
	store := NewStore(&fakeOracle{allow: true}, 6)

	if err := store.Add(context.Background(), seatItem(1, 101), 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(context.Background(), seatItem(1, 102), 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if got := len(store.Items()); got != 2 {
		t.Fatalf("expected seat items to keep separate lines, got %d", got)
	}
}

func TestStoreAdd_CeilingInvariant(t *testing.T) {
	store := NewStore(&fakeOracle{allow: true}, 6)

	if err := store.Add(context.Background(), generalItem(1, 4), 4); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// 4 in cart + 3 requested exceeds the ceiling of 6 regardless of what
	// the oracle would say
	err := store.Add(context.Background(), generalItem(1, 3), 3)
	if !errors.Is(err, models.ErrTicketLimitExceeded) {
		t.Fatalf("expected ErrTicketLimitExceeded, got %v", err)
	}

	// A different event has its own budget
	if err := store.Add(context.Background(), generalItem(2, 3), 3); err != nil {
		t.Fatalf("add for another event failed: %v", err)
	}

	total := 0
	for _, item := range store.Items() {
		if item.EventID == 1 {
			total += item.Quantity
		}
	}
	if total > 6 {
		t.Errorf("event total %d exceeds ceiling", total)
	}
}

func TestStoreAdd_OracleDenies(t *testing.T) {
	oracle := &fakeOracle{allow: false}
	store := NewStore(oracle, 6)

	err := store.Add(context.Background(), generalItem(1, 2), 2)
	if !errors.Is(err, models.ErrTicketLimitExceeded) {
		t.Fatalf("expected ErrTicketLimitExceeded, got %v", err)
	}
	if oracle.calls != 1 {
		t.Errorf("expected the oracle to be consulted once, got %d", oracle.calls)
	}
	if len(store.Items()) != 0 {
		t.Error("denied add must not mutate the cart")
	}
}

func TestStoreAdd_OracleError(t *testing.T) {
	store := NewStore(&fakeOracle{err: errors.New("backend down")}, 6)

	if err := store.Add(context.Background(), generalItem(1, 2), 2); err == nil {
		t.Fatal("expected an error when the oracle is unreachable")
	}
	if len(store.Items()) != 0 {
		t.Error("failed add must not mutate the cart")
	}
}

func TestStoreUpdateQuantity(t *testing.T) {
	oracle := &fakeOracle{allow: true}
	store := NewStore(oracle, 6)

	if err := store.Add(context.Background(), generalItem(1, 4), 4); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := store.Items()[0].ID

	// Decreasing succeeds locally without consulting the oracle
	oracle.allow = false
	if err := store.UpdateQuantity(context.Background(), id, 2); err != nil {
		t.Fatalf("decrease failed: %v", err)
	}

	// Increasing re-runs the ceiling check
	err := store.UpdateQuantity(context.Background(), id, 5)
	if !errors.Is(err, models.ErrTicketLimitExceeded) {
		t.Fatalf("expected ErrTicketLimitExceeded on increase, got %v", err)
	}
	if store.Items()[0].Quantity != 2 {
		t.Errorf("rejected increase must not change quantity, got %d", store.Items()[0].Quantity)
	}

	oracle.allow = true
	if err := store.UpdateQuantity(context.Background(), id, 5); err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if store.Items()[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", store.Items()[0].Quantity)
	}
}

func TestStoreUpdateQuantity_MultiSeatGroupLocked(t *testing.T) {
	store := NewStore(&fakeOracle{allow: true}, 6)

	if err := store.Add(context.Background(), seatItem(1, 101, 102), 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := store.Items()[0].ID

	err := store.UpdateQuantity(context.Background(), id, 1)
	if !errors.Is(err, models.ErrQuantityLocked) {
		t.Fatalf("expected ErrQuantityLocked, got %v", err)
	}
}

func TestStoreUpdateQuantity_UnknownItem(t *testing.T) {
	store := NewStore(&fakeOracle{allow: true}, 6)

	err := store.UpdateQuantity(context.Background(), "missing", 1)
	if !errors.Is(err, models.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestStoreRemoveClearRestore(t *testing.T) {
	store := NewStore(&fakeOracle{allow: true}, 6)

	if err := store.Add(context.Background(), seatItem(1, 101), 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(context.Background(), generalItem(2, 2), 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	snapshot := store.Items()

	store.Remove(snapshot[0].ID)
	if got := len(store.Items()); got != 1 {
		t.Fatalf("expected 1 item after remove, got %d", got)
	}

	store.Clear()
	if got := len(store.Items()); got != 0 {
		t.Fatalf("expected empty cart after clear, got %d items", got)
	}

	store.Restore(snapshot)
	if got := len(store.Items()); got != 2 {
		t.Fatalf("expected 2 items after restore, got %d", got)
	}
	if store.TotalAmount() != 500+2*250 {
		t.Errorf("unexpected total after restore: %d", store.TotalAmount())
	}
}

func TestStoreItems_SnapshotIsolation(t *testing.T) {
	store := NewStore(&fakeOracle{allow: true}, 6)

	if err := store.Add(context.Background(), seatItem(1, 101), 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	snapshot := store.Items()
	snapshot[0].Quantity = 99
	snapshot[0].TicketIDs[0] = 999

	items := store.Items()
	if items[0].Quantity != 1 {
		t.Error("mutating a snapshot must not affect the store")
	}
	if items[0].TicketIDs[0] != 101 {
		t.Error("mutating snapshot ticket ids must not affect the store")
	}
}
