package models

// User is the acting buyer. Authentication itself happens elsewhere; the
// checkout flow only needs a numeric identifier and a contact address.
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// CanCheckout reports whether the user carries enough identity to start a
// checkout session.
func (u *User) CanCheckout() bool {
	return u != nil && u.ID > 0 && u.Email != ""
}
