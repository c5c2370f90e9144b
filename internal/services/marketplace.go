package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ticketcart/internal/models"
)

// MarketplaceConfig represents marketplace backend configuration
type MarketplaceConfig struct {
	BaseURL string
	APIKey  string
}

// MarketplaceClient talks to the sale/reservation backend over HTTP
type MarketplaceClient struct {
	config  MarketplaceConfig
	client  *http.Client
	baseURL string
}

// NewMarketplaceClient creates a new marketplace API client
func NewMarketplaceClient(config MarketplaceConfig) *MarketplaceClient {
	return &MarketplaceClient{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(config.BaseURL, "/"),
	}
}

type ceilingCheckRequest struct {
	EventID            int `json:"event_id"`
	AdditionalQuantity int `json:"additional_quantity"`
}

type ceilingCheckResponse struct {
	Allowed bool `json:"allowed"`
}

// CheckTicketCeiling asks the backend whether the buyer may add the given
// quantity of tickets for an event.
func (c *MarketplaceClient) CheckTicketCeiling(ctx context.Context, eventID, additionalQuantity int) (bool, error) {
	req := ceilingCheckRequest{EventID: eventID, AdditionalQuantity: additionalQuantity}

	var resp ceilingCheckResponse
	if err := c.post(ctx, "/api/v1/purchase/ceiling-check", req, &resp); err != nil {
		return false, fmt.Errorf("failed to check ticket ceiling: %w", err)
	}
	return resp.Allowed, nil
}

// CreateCheckoutSession initiates an external payment session and places the
// reservation hold.
func (c *MarketplaceClient) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	var resp CheckoutSessionResponse
	if err := c.post(ctx, "/api/v1/purchase/checkout-session", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	if resp.RedirectURL == "" {
		return nil, fmt.Errorf("checkout session response carried no redirect URL")
	}
	return &resp, nil
}

type confirmSessionRequest struct {
	SessionToken string `json:"session_token"`
}

type confirmedResponse struct {
	Confirmed bool `json:"confirmed"`
}

// ConfirmSession confirms a sale by provider session token.
func (c *MarketplaceClient) ConfirmSession(ctx context.Context, sessionToken string) (bool, error) {
	req := confirmSessionRequest{SessionToken: sessionToken}

	var resp confirmedResponse
	if err := c.post(ctx, "/api/v1/purchase/confirm-session", req, &resp); err != nil {
		return false, fmt.Errorf("failed to confirm session: %w", err)
	}
	return resp.Confirmed, nil
}

// CheckSaleStatus reports whether a sale has been recorded for the buyer.
func (c *MarketplaceClient) CheckSaleStatus(ctx context.Context, clientRef string) (bool, error) {
	path := "/api/v1/purchase/sale-status?buyer=" + url.QueryEscape(clientRef)

	var resp confirmedResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return false, fmt.Errorf("failed to check sale status: %w", err)
	}
	return resp.Confirmed, nil
}

type releaseRequest struct {
	ReservationGroups []models.ReservationGroup `json:"reservation_groups"`
}

// ReleaseReservations returns held seats to inventory.
func (c *MarketplaceClient) ReleaseReservations(ctx context.Context, groups []models.ReservationGroup) error {
	req := releaseRequest{ReservationGroups: groups}
	if err := c.post(ctx, "/api/v1/purchase/release", req, nil); err != nil {
		return fmt.Errorf("failed to release reservations: %w", err)
	}
	return nil
}

func (c *MarketplaceClient) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *MarketplaceClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.handleAPIError(resp.StatusCode, bodyBytes)
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// APIError represents an error response from the marketplace backend
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace error (status %d): %s", e.StatusCode, e.Message)
}

// handleAPIError maps backend error responses
func (c *MarketplaceClient) handleAPIError(statusCode int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		return fmt.Errorf("API error (status %d): %s", statusCode, string(body))
	}
	apiErr.StatusCode = statusCode

	switch statusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("bad request: %s", apiErr.Message)
	case http.StatusUnauthorized:
		return fmt.Errorf("unauthorized: check API key - %s", apiErr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("not found: %s", apiErr.Message)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("validation error: %s", apiErr.Message)
	default:
		return &apiErr
	}
}
