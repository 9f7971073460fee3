package profileapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// PaymentType tags business-profile purchases on the verify endpoint.
const PaymentType = "business_profile"

// Client represents an upstream profiles/payments API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new upstream API client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ListProfiles fetches all business profiles owned by a user
func (c *Client) ListProfiles(ctx context.Context, token, ownerID string) ([]Profile, error) {
	path := "/profiles?owner=" + url.QueryEscape(ownerID)
	data, err := c.doRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	var list profileList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile list: %w", err)
	}

	return list.Profiles, nil
}

// CreateProfile creates a new business profile
func (c *Client) CreateProfile(ctx context.Context, token string, req CreateProfileRequest) (*Profile, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/profiles", token, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal created profile: %w", err)
	}

	return &profile, nil
}

// UpdateProfile applies a partial update to a business profile
func (c *Client) UpdateProfile(ctx context.Context, token, id string, patch ProfilePatch) (*Profile, error) {
	data, err := c.doRequest(ctx, http.MethodPatch, "/profiles/"+url.PathEscape(id), token, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile %s: %w", id, err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated profile: %w", err)
	}

	return &profile, nil
}

// DeleteProfile deletes a business profile
func (c *Client) DeleteProfile(ctx context.Context, token, id string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/profiles/"+url.PathEscape(id), token, nil)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	return nil
}

// CreateOrder requests a new payment order
func (c *Client) CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (*Order, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/payments/orders", token, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	var order Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment order: %w", err)
	}

	return &order, nil
}

// VerifyPayment submits a checkout result for server-side verification
func (c *Client) VerifyPayment(ctx context.Context, token string, req VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	if req.Type == "" {
		req.Type = PaymentType
	}

	data, err := c.doRequest(ctx, http.MethodPost, "/payments/verify", token, req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}

	var resp VerifyPaymentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verify response: %w", err)
	}

	return &resp, nil
}

// PaymentStatus polls the payment status of the user's pending order context
func (c *Client) PaymentStatus(ctx context.Context, token string) (*PaymentStatusResponse, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/payments/status", token, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment status: %w", err)
	}

	var resp PaymentStatusResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment status: %w", err)
	}

	return &resp, nil
}

// doRequest performs an HTTP request against the upstream API and unwraps the
// standard {success, data} envelope.
func (c *Client) doRequest(ctx context.Context, method, path, token string, payload interface{}) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewBuffer(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
		default:
			return nil, fmt.Errorf("%w: status %d, body: %s", ErrUpstream, resp.StatusCode, string(respBody))
		}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response envelope: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s", ErrUnsuccessful, env.Error)
	}

	return env.Data, nil
}
