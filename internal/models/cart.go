package models

// CartLineItem represents one purchasable unit as added to the cart.
type CartLineItem struct {
	ID         string `json:"id"` // client-local, assigned on add
	EventID    int    `json:"event_id"`
	PlaceID    int    `json:"place_id"`
	SectorID   int    `json:"sector_id"` // 0 means a general, non seat-managed sector
	SectorName string `json:"sector_name"`
	SeatLabel  string `json:"seat_label,omitempty"`
	Price      int    `json:"price"` // unit price in cents
	Quantity   int    `json:"quantity"`
	TicketIDs  []int  `json:"ticket_ids,omitempty"` // server-assigned seat ids, seat-managed sectors only

	// Display metadata
	EventName string `json:"event_name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Location  string `json:"location"`
	ImageURL  string `json:"image_url,omitempty"`
}

// SeatManaged reports whether the item belongs to a seat-managed sector,
// i.e. one addressed by explicit ticket ids rather than bare quantity.
func (i *CartLineItem) SeatManaged() bool {
	return i.SectorID != 0
}

// Subtotal returns the item total in cents.
func (i *CartLineItem) Subtotal() int {
	return i.Price * i.Quantity
}

// DisplayGroup is a line-item aggregate for the cart view. Items sharing
// event, date, time, location, base sector name and unit price merge into
// one row. Derived on every render, never persisted.
type DisplayGroup struct {
	EventName   string   `json:"event_name"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Location    string   `json:"location"`
	SectorName  string   `json:"sector_name"` // base name, seat label stripped
	Price       int      `json:"price"`
	Quantity    int      `json:"quantity"`
	TotalPrice  int      `json:"total_price"`
	IDs         []string `json:"ids"` // contributing CartLineItem ids
	SeatNumbers []string `json:"seat_numbers,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}
