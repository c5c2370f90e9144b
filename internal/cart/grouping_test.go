package cart

import (
	"testing"

	"ticketcart/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayGroups_SeatLabelParsing(t *testing.T) {
	items := []models.CartLineItem{
		{
			ID: "a", EventID: 1, PlaceID: 10, SectorID: 3,
			SectorName: "Floor Seat 12",
			Price:      500, Quantity: 1, TicketIDs: []int{101},
			EventName: "Autumn Gala", Date: "2026-10-01", Time: "20:00", Location: "Main Hall",
		},
	}

	groups := DisplayGroups(items)
	require.Len(t, groups, 1)
	assert.Equal(t, "Floor", groups[0].SectorName)
	assert.Equal(t, []string{"12"}, groups[0].SeatNumbers)
	assert.Equal(t, 500, groups[0].TotalPrice)
	assert.Equal(t, []string{"a"}, groups[0].IDs)
}

func TestDisplayGroups_StructuredSeatLabelPreferred(t *testing.T) {
	items := []models.CartLineItem{
		{ID: "a", EventID: 1, SectorName: "Balcony", SeatLabel: "B7", Price: 300, Quantity: 1, EventName: "Autumn Gala"},
	}

	groups := DisplayGroups(items)
	require.Len(t, groups, 1)
	assert.Equal(t, "Balcony", groups[0].SectorName)
	assert.Equal(t, []string{"B7"}, groups[0].SeatNumbers)
}

func TestDisplayGroups_TrailingNumberIsNotASeat(t *testing.T) {
	items := []models.CartLineItem{
		{ID: "a", EventID: 1, SectorName: "Gate 5", Price: 200, Quantity: 2, EventName: "Autumn Gala"},
	}

	groups := DisplayGroups(items)
	require.Len(t, groups, 1)
	assert.Equal(t, "Gate 5", groups[0].SectorName)
	assert.Empty(t, groups[0].SeatNumbers)
}

func TestDisplayGroups_UnnamedSectorGoesToOther(t *testing.T) {
	items := []models.CartLineItem{
		{ID: "a", EventID: 1, SectorName: "", Price: 200, Quantity: 1, EventName: "Autumn Gala"},
	}

	groups := DisplayGroups(items)
	require.Len(t, groups, 1)
	assert.Equal(t, OtherSector, groups[0].SectorName)
}

func TestDisplayGroups_MergeAccumulates(t *testing.T) {
	items := []models.CartLineItem{
		{
			ID: "a", EventID: 1, SectorName: "Floor Seat 12", Price: 500, Quantity: 1,
			EventName: "Autumn Gala", Date: "2026-10-01", Time: "20:00", Location: "Main Hall",
		},
		{
			ID: "b", EventID: 1, SectorName: "Floor Seat 14", Price: 500, Quantity: 1,
			EventName: "Autumn Gala", Date: "2026-10-01", Time: "20:00", Location: "Main Hall",
		},
		{
			ID: "c", EventID: 2, SectorName: "Floor Seat 1", Price: 500, Quantity: 1,
			EventName: "Winter Show", Date: "2026-12-01", Time: "19:00", Location: "Main Hall",
		},
	}

	groups := DisplayGroups(items)
	require.Len(t, groups, 2, "same base sector and price merge, different event does not")

	assert.Equal(t, 2, groups[0].Quantity)
	assert.Equal(t, 1000, groups[0].TotalPrice)
	assert.Equal(t, []string{"a", "b"}, groups[0].IDs)
	assert.Equal(t, []string{"12", "14"}, groups[0].SeatNumbers)

	assert.Equal(t, "Winter Show", groups[1].EventName)
}

func TestReservationGroups_SeatManagedScenario(t *testing.T) {
	items := []models.CartLineItem{
		{ID: "a", EventID: 1, PlaceID: 10, SectorID: 3, SectorName: "Floor Seat 12", Price: 500, Quantity: 1, TicketIDs: []int{101}},
	}

	groups := ReservationGroups(items)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].EventID)
	assert.Equal(t, 10, groups[0].PlaceID)
	assert.Equal(t, 3, groups[0].SectorID)
	assert.Equal(t, []int{101}, groups[0].TicketIDs)
}

func TestReservationGroups_GeneralQuantitiesMerge(t *testing.T) {
	items := []models.CartLineItem{
		{ID: "a", EventID: 1, PlaceID: 10, SectorID: 0, Quantity: 2},
		{ID: "b", EventID: 1, PlaceID: 10, SectorID: 0, Quantity: 1},
	}

	groups := ReservationGroups(items)
	require.Len(t, groups, 1)
	assert.Equal(t, 3, groups[0].Quantity)
	assert.Empty(t, groups[0].TicketIDs)
}

func TestReservationGroups_TicketIDsDeduplicated(t *testing.T) {
	items := []models.CartLineItem{
		{ID: "a", EventID: 1, PlaceID: 10, SectorID: 3, Quantity: 2, TicketIDs: []int{101, 102}},
		{ID: "b", EventID: 1, PlaceID: 10, SectorID: 3, Quantity: 1, TicketIDs: []int{102, 103}},
		{ID: "c", EventID: 1, PlaceID: 10, SectorID: 4, Quantity: 1, TicketIDs: []int{103}},
	}

	groups := ReservationGroups(items)
	require.Len(t, groups, 2)
	assert.Equal(t, []int{101, 102, 103}, groups[0].TicketIDs)
	assert.Equal(t, []int{103}, groups[1].TicketIDs)

	// No id may appear twice across groups sharing a key or within a group
	seen := make(map[int]int)
	for _, g := range groups[:1] {
		for _, id := range g.TicketIDs {
			seen[id]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "ticket id %d duplicated", id)
	}
}

func TestReservationGroups_EmptyGroupsDropped(t *testing.T) {
	items := []models.CartLineItem{
		{ID: "a", EventID: 1, PlaceID: 10, SectorID: 0, Quantity: 0},
		{ID: "b", EventID: 2, PlaceID: 10, SectorID: 0, Quantity: 2},
	}

	groups := ReservationGroups(items)
	require.Len(t, groups, 1, "zero-quantity idless group must be dropped silently")
	assert.Equal(t, 2, groups[0].EventID)
}

func TestGrouping_PureAndIdempotent(t *testing.T) {
	items := []models.CartLineItem{
		{ID: "a", EventID: 1, PlaceID: 10, SectorID: 3, SectorName: "Floor Seat 12", Price: 500, Quantity: 1, TicketIDs: []int{101}, EventName: "Autumn Gala"},
		{ID: "b", EventID: 1, PlaceID: 10, SectorID: 0, SectorName: "Standing", Price: 250, Quantity: 2, EventName: "Autumn Gala"},
	}
	original := make([]models.CartLineItem, len(items))
	copy(original, items)

	first := ReservationGroups(items)
	second := ReservationGroups(items)
	assert.Equal(t, first, second, "reservation grouping must be idempotent")

	firstDisplay := DisplayGroups(items)
	secondDisplay := DisplayGroups(items)
	assert.Equal(t, firstDisplay, secondDisplay, "display grouping must be idempotent")

	assert.Equal(t, original, items, "grouping must not mutate its input")
}
