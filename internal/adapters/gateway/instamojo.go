package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"svco-apply/internal/core/services"
)

// InstamojoConfig holds Instamojo API configuration
type InstamojoConfig struct {
	BaseURL   string
	APIKey    string
	AuthToken string
	Purpose   string
}

// InstamojoClient talks to the Instamojo payment-requests API. It satisfies
// services.PaymentGateway.
type InstamojoClient struct {
	config InstamojoConfig
	client *http.Client
}

// NewInstamojoClient creates a new Instamojo client
func NewInstamojoClient(config InstamojoConfig) *InstamojoClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.instamojo.com/api/1.1"
	}
	if config.Purpose == "" {
		config.Purpose = "Application fee"
	}
	return &InstamojoClient{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// paymentRequestEnvelope mirrors Instamojo's response wrapper
type paymentRequestEnvelope struct {
	Success        bool           `json:"success"`
	PaymentRequest paymentRequest `json:"payment_request"`
	Message        string         `json:"message"`
}

type paymentRequest struct {
	ID       string           `json:"id"`
	Status   string           `json:"status"`
	LongURL  string           `json:"longurl"`
	ShortURL string           `json:"shorturl"`
	Payments []gatewayPayment `json:"payments"`
}

type gatewayPayment struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// CreateRequest creates a payment request for the given amount and payer.
func (c *InstamojoClient) CreateRequest(ctx context.Context, in services.CreateRequestInput) (*services.GatewayRequest, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(in.Amount, 10))
	form.Set("purpose", c.config.Purpose)
	form.Set("buyer_name", in.BuyerName)
	form.Set("email", in.Email)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/payment-requests/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setAuthHeaders(req)

	envelope, err := c.do(req)
	if err != nil {
		return nil, err
	}

	return &services.GatewayRequest{
		ID:       envelope.PaymentRequest.ID,
		Status:   envelope.PaymentRequest.Status,
		LongURL:  envelope.PaymentRequest.LongURL,
		ShortURL: envelope.PaymentRequest.ShortURL,
	}, nil
}

// FetchStatus queries the current state of a payment request.
func (c *InstamojoClient) FetchStatus(ctx context.Context, requestID string) (*services.GatewayStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.BaseURL+"/payment-requests/"+url.PathEscape(requestID)+"/", nil)
	if err != nil {
		return nil, err
	}
	c.setAuthHeaders(req)

	envelope, err := c.do(req)
	if err != nil {
		return nil, err
	}

	status := &services.GatewayStatus{
		Status: envelope.PaymentRequest.Status,
	}
	if len(envelope.PaymentRequest.Payments) > 0 {
		latest := envelope.PaymentRequest.Payments[len(envelope.PaymentRequest.Payments)-1]
		status.PaymentStatus = latest.Status
		if paidAt, err := time.Parse(time.RFC3339, latest.CreatedAt); err == nil {
			status.PaidAt = &paidAt
		}
	}

	return status, nil
}

func (c *InstamojoClient) setAuthHeaders(req *http.Request) {
	req.Header.Set("X-Api-Key", c.config.APIKey)
	req.Header.Set("X-Auth-Token", c.config.AuthToken)
}

func (c *InstamojoClient) do(req *http.Request) (*paymentRequestEnvelope, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("instamojo: status %d: %s", resp.StatusCode, string(body))
	}

	var envelope paymentRequestEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("instamojo: decode response: %w", err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("instamojo: request rejected: %s", envelope.Message)
	}

	return &envelope, nil
}
