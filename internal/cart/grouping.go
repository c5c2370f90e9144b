package cart

import (
	"regexp"
	"strings"

	"ticketcart/internal/models"
)

// OtherSector is the display bucket for items that carry no sector name.
const OtherSector = "Other"

// seatLabelPattern matches a sector name with an embedded seat label, e.g.
// "Floor Seat 12" -> base "Floor", seat "12". Anchored at the end so a
// sector legitimately named with a trailing number ("Gate 5") is left alone
// unless the word "seat" precedes it.
var seatLabelPattern = regexp.MustCompile(`(?i)^(.*\S)\s+seat\s+(\d+)\s*$`)

// splitSeatLabel returns the base sector name and the seat number of a line
// item. A structured SeatLabel takes precedence over parsing the free-text
// sector name.
func splitSeatLabel(item *models.CartLineItem) (base, seat string) {
	name := strings.TrimSpace(item.SectorName)
	if item.SeatLabel != "" {
		return name, item.SeatLabel
	}
	if m := seatLabelPattern.FindStringSubmatch(name); m != nil {
		return m[1], m[2]
	}
	return name, ""
}

type displayKey struct {
	eventName, date, time, location, sector string
	price                                   int
}

// DisplayGroups collapses raw line items into the rows the cart view shows,
// grouped by event, date, time, location, base sector name and unit price.
// Pure: the input is not mutated and groups come out in insertion order.
func DisplayGroups(items []models.CartLineItem) []models.DisplayGroup {
	groups := make([]models.DisplayGroup, 0, len(items))
	index := make(map[displayKey]int, len(items))

	for i := range items {
		item := &items[i]
		base, seat := splitSeatLabel(item)
		if base == "" {
			base = OtherSector
		}

		key := displayKey{item.EventName, item.Date, item.Time, item.Location, base, item.Price}
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, models.DisplayGroup{
				EventName:  item.EventName,
				Date:       item.Date,
				Time:       item.Time,
				Location:   item.Location,
				SectorName: base,
				Price:      item.Price,
				ImageURL:   item.ImageURL,
			})
		}

		g := &groups[idx]
		g.Quantity += item.Quantity
		g.TotalPrice += item.Subtotal()
		g.IDs = append(g.IDs, item.ID)
		if seat != "" {
			g.SeatNumbers = append(g.SeatNumbers, seat)
		}
	}

	return groups
}

type reservationKey struct {
	event, place, sector int
}

// ReservationGroups collapses raw line items into the provider-facing
// reservation groups, keyed by (event, place, sector). Explicit ticket ids
// are de-duplicated across items sharing a key; quantities accumulate.
// Groups with no ids and no positive quantity are dropped silently. Pure and
// deterministic: same input, same output, insertion order preserved.
func ReservationGroups(items []models.CartLineItem) []models.ReservationGroup {
	order := make([]reservationKey, 0, len(items))
	acc := make(map[reservationKey]*models.ReservationGroup, len(items))
	seen := make(map[reservationKey]map[int]bool, len(items))

	for i := range items {
		item := &items[i]
		key := reservationKey{item.EventID, item.PlaceID, item.SectorID}

		g, ok := acc[key]
		if !ok {
			g = &models.ReservationGroup{
				EventID:  item.EventID,
				PlaceID:  item.PlaceID,
				SectorID: item.SectorID,
			}
			acc[key] = g
			seen[key] = make(map[int]bool)
			order = append(order, key)
		}

		for _, ticketID := range item.TicketIDs {
			if seen[key][ticketID] {
				continue
			}
			seen[key][ticketID] = true
			g.TicketIDs = append(g.TicketIDs, ticketID)
		}
		g.Quantity += item.Quantity
	}

	groups := make([]models.ReservationGroup, 0, len(order))
	for _, key := range order {
		if g := acc[key]; g.Valid() {
			groups = append(groups, *g)
		}
	}
	return groups
}
