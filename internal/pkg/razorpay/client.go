package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BrewBoxLabs/BrewBox/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.razorpay.com/v1"

// Client is a minimal Razorpay REST client. The webhook reconciliation flow
// only needs customer lookup; everything else goes through the provider's
// dashboard or the checkout frontend.
type Client struct {
	KeyID      string
	KeySecret  string
	APIBaseURL string

	HTTPClient *http.Client
}

type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

func NewClientFromEnv() *Client {
	return &Client{
		KeyID:      strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_ID", "")),
		KeySecret:  strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_SECRET", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("RAZORPAY_API_BASE_URL", defaultAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchCustomer looks up a provider customer by id. Used by the
// synthesize-from-notes fallback to resolve a local user by email.
func (c *Client) FetchCustomer(ctx context.Context, customerID string) (*Customer, error) {
	id := strings.TrimSpace(customerID)
	if id == "" {
		return nil, errors.New("customer id is required")
	}
	if strings.TrimSpace(c.KeyID) == "" || strings.TrimSpace(c.KeySecret) == "" {
		return nil, errors.New("RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET are not configured")
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + "/customers/" + id
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.KeyID, c.KeySecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("razorpay customer lookup failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out Customer
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("razorpay customer response missing id")
	}
	return &out, nil
}
