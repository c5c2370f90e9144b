package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"ticketcart/internal/cart"
	"ticketcart/internal/models"
	"ticketcart/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

const sessionName = "session"

// CheckoutHandler handles the cart view, checkout initiation and the
// post-payment return flow.
type CheckoutHandler struct {
	cart       *cart.Store
	checkout   *services.CheckoutService
	reconciler *services.Reconciler
	release    *services.ReleaseService
	store      sessions.Store
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(
	cartStore *cart.Store,
	checkout *services.CheckoutService,
	reconciler *services.Reconciler,
	release *services.ReleaseService,
	store sessions.Store,
) *CheckoutHandler {
	return &CheckoutHandler{
		cart:       cartStore,
		checkout:   checkout,
		reconciler: reconciler,
		release:    release,
		store:      store,
	}
}

// Routes mounts the checkout routes on the router
func (h *CheckoutHandler) Routes(r chi.Router) {
	r.Get("/cart", h.ViewCart)
	r.Post("/cart/items", h.AddToCart)
	r.Post("/cart/items/{id}/quantity", h.UpdateQuantity)
	r.Post("/cart/items/{id}/delete", h.RemoveFromCart)

	r.Get("/checkout", h.CheckoutPage)
	r.Post("/checkout", h.StartCheckout)
	r.Get("/payment/callback", h.PaymentCallback)
	r.Get("/checkout/success", h.CheckoutSuccess)
	r.Get("/checkout/failure", h.CheckoutFailure)
}

// ViewCart returns the display-grouped cart contents
func (h *CheckoutHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	items := h.cart.Items()
	groups := cart.DisplayGroups(items)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"groups":       groups,
		"total_amount": h.cart.TotalAmount(),
	})
}

// AddToCart adds tickets to the shopping cart
func (h *CheckoutHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var item models.CartLineItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid cart item", http.StatusBadRequest)
		return
	}

	quantity := item.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	if err := h.cart.Add(r.Context(), item, quantity); err != nil {
		if errors.Is(err, models.ErrTicketLimitExceeded) {
			http.Error(w, fmt.Sprintf("You can hold at most %d tickets for this event", cart.DefaultEventTicketLimit), http.StatusBadRequest)
			return
		}
		log.Printf("Add to cart failed: %v", err)
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// UpdateQuantity changes the quantity of a cart line item
func (h *CheckoutHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity <= 0 {
		http.Error(w, "Invalid quantity", http.StatusBadRequest)
		return
	}

	switch err := h.cart.UpdateQuantity(r.Context(), id, quantity); {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, models.ErrItemNotFound):
		http.Error(w, "Cart item not found", http.StatusNotFound)
	case errors.Is(err, models.ErrQuantityLocked):
		http.Error(w, "Remove and re-add seat selections to change them", http.StatusConflict)
	case errors.Is(err, models.ErrTicketLimitExceeded):
		http.Error(w, "Ticket limit for this event exceeded", http.StatusBadRequest)
	default:
		log.Printf("Update quantity failed: %v", err)
		http.Error(w, "Failed to update quantity", http.StatusInternalServerError)
	}
}

// RemoveFromCart removes one line item
func (h *CheckoutHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusOK)
}

// CheckoutPage shows the checkout summary. Entering the page sweeps any
// stale attempt left by an abandoned flow (the back-button case) so its
// reservation goes back to inventory before a new one is taken.
func (h *CheckoutHandler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	h.release.ReleaseStale(r.Context())

	items := h.cart.Items()
	groups := cart.DisplayGroups(items)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"groups":       groups,
		"total_amount": h.cart.TotalAmount(),
	})
}

// StartCheckout initiates the payment session and redirects the buyer to
// the external provider
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	buyerID, _ := strconv.Atoi(r.FormValue("buyer_id"))
	user := &models.User{
		ID:    buyerID,
		Email: r.FormValue("buyer_email"),
		Name:  r.FormValue("buyer_name"),
	}

	redirectURL, err := h.checkout.Initiate(r.Context(), user)
	switch {
	case err == nil:
		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	case errors.Is(err, models.ErrNotAuthenticated):
		http.Error(w, "Sign in with a contact email to check out", http.StatusUnauthorized)
	case errors.Is(err, models.ErrEmptyCart):
		http.Error(w, "Your cart is empty", http.StatusBadRequest)
	case errors.Is(err, models.ErrMissingSeatSelection), errors.Is(err, models.ErrInvalidPlaceOrSector):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Checkout initiation failed: %v", err)
		http.Error(w, "Could not start the payment. Please try again.", http.StatusBadGateway)
	}
}

// PaymentCallback handles the return from the external payment flow. It
// resolves the outcome and sends the buyer to exactly one of the two
// terminal pages.
func (h *CheckoutHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	sessionToken := r.URL.Query().Get("session_token")
	log.Printf("Payment callback received (session token present: %t)", sessionToken != "")

	outcome := h.reconciler.Reconcile(r.Context(), sessionToken)
	if !outcome.IsTerminal() {
		// The buyer navigated away mid-reconciliation; nothing to render.
		return
	}

	if session, err := h.store.Get(r, sessionName); err == nil {
		session.Values["checkout_outcome"] = outcome.String()
		if err := session.Save(r, w); err != nil {
			log.Printf("Payment callback: failed to save session: %v", err)
		}
	}

	if outcome == models.OutcomeConfirmed {
		http.Redirect(w, r, "/checkout/success", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/checkout/failure", http.StatusSeeOther)
}

// CheckoutSuccess renders the success outcome page
func (h *CheckoutHandler) CheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	h.clearOutcomeFlash(w, r)

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `
		<div class="checkout-outcome checkout-outcome-success">
			<h1>Payment confirmed</h1>
			<p>Your tickets are on their way to your inbox.</p>
			<a href="/cart">Back to the marketplace</a>
		</div>
	`)
}

// CheckoutFailure renders the failure outcome page with the restored cart so
// the buyer can retry without re-selecting seats
func (h *CheckoutHandler) CheckoutFailure(w http.ResponseWriter, r *http.Request) {
	h.clearOutcomeFlash(w, r)

	groups := cart.DisplayGroups(h.cart.Items())

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `
		<div class="checkout-outcome checkout-outcome-failure">
			<h1>Payment not confirmed</h1>
			<p>We could not confirm your payment. Your seats were returned to sale and your cart was kept.</p>
			<ul>
	`)
	for _, g := range groups {
		fmt.Fprintf(w, "\t\t<li>%s - %s x%d</li>\n", g.EventName, g.SectorName, g.Quantity)
	}
	fmt.Fprint(w, `
			</ul>
			<a href="/checkout">Try again</a>
		</div>
	`)
}

func (h *CheckoutHandler) clearOutcomeFlash(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, sessionName)
	if err != nil {
		return
	}
	if _, ok := session.Values["checkout_outcome"]; ok {
		delete(session.Values, "checkout_outcome")
		session.Save(r, w)
	}
}
