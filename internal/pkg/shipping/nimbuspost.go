package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/BrewBoxLabs/BrewBox/internal/pkg/env"
)

const defaultNimbuspostBaseURL = "https://api.nimbuspost.com/v1"

// NimbuspostClient wraps the Nimbuspost shipment API. The API authenticates
// with a short-lived token obtained from email/password credentials.
type NimbuspostClient struct {
	Email    string
	Password string
	BaseURL  string

	HTTPClient *http.Client

	mu    sync.Mutex
	token string
}

func NewNimbuspostClientFromEnv() *NimbuspostClient {
	return &NimbuspostClient{
		Email:    strings.TrimSpace(env.GetEnv("NIMBUSPOST_EMAIL", "")),
		Password: strings.TrimSpace(env.GetEnv("NIMBUSPOST_PASSWORD", "")),
		BaseURL:  strings.TrimSpace(env.GetEnv("NIMBUSPOST_API_BASE_URL", defaultNimbuspostBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *NimbuspostClient) Name() string { return ProviderNimbuspost }

func (c *NimbuspostClient) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	if c.Email == "" || c.Password == "" {
		return "", errors.New("NIMBUSPOST_EMAIL/NIMBUSPOST_PASSWORD are not configured")
	}

	payload, _ := json.Marshal(map[string]string{"email": c.Email, "password": c.Password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.BaseURL, "/")+"/users/login", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var out struct {
		Status bool   `json:"status"`
		Data   string `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if !out.Status || strings.TrimSpace(out.Data) == "" {
		return "", fmt.Errorf("nimbuspost login failed: %s", string(body))
	}
	c.token = out.Data
	return c.token, nil
}

func (c *NimbuspostClient) CreateShipment(ctx context.Context, req ShipmentRequest) (*Shipment, error) {
	if req.Address.IsEmpty() {
		return nil, errors.New("shipment requires a shipping address")
	}

	body := map[string]interface{}{
		"order_number": req.Reference,
		"payment_type": "prepaid",
		"order_amount": req.CODAmount,
		"weight":       req.WeightGrams,
		"consignee": map[string]string{
			"name":      req.Address.Name,
			"address":   req.Address.Line1,
			"address_2": req.Address.Line2,
			"city":      req.Address.City,
			"state":     req.Address.State,
			"pincode":   req.Address.PostalCode,
			"phone":     req.Address.Phone,
		},
	}

	var out struct {
		Status bool `json:"status"`
		Data   struct {
			AWBNumber string `json:"awb_number"`
			Courier   string `json:"courier_name"`
		} `json:"data"`
	}
	if err := c.call(ctx, http.MethodPost, "/shipments", body, &out); err != nil {
		return nil, err
	}
	if !out.Status || strings.TrimSpace(out.Data.AWBNumber) == "" {
		return nil, errors.New("nimbuspost shipment creation returned no AWB")
	}

	return &Shipment{
		CourierName:    ProviderNimbuspost,
		TrackingNumber: out.Data.AWBNumber,
	}, nil
}

func (c *NimbuspostClient) TrackShipment(ctx context.Context, trackingNumber string) ([]TrackingEvent, error) {
	var out struct {
		Status bool `json:"status"`
		Data   struct {
			History []struct {
				StatusTitle string `json:"status_title"`
				Location    string `json:"location"`
				EventTime   string `json:"event_time"`
			} `json:"history"`
		} `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/shipments/track/"+strings.TrimSpace(trackingNumber), nil, &out); err != nil {
		return nil, err
	}

	events := make([]TrackingEvent, 0, len(out.Data.History))
	for _, h := range out.Data.History {
		ts, _ := time.Parse("2006-01-02 15:04:05", h.EventTime)
		events = append(events, TrackingEvent{
			Status:    h.StatusTitle,
			Location:  h.Location,
			Timestamp: ts,
		})
	}
	return events, nil
}

func (c *NimbuspostClient) CancelShipment(ctx context.Context, trackingNumber string) error {
	body := map[string]string{"awb": strings.TrimSpace(trackingNumber)}
	var out struct {
		Status bool `json:"status"`
	}
	if err := c.call(ctx, http.MethodPost, "/shipments/cancel", body, &out); err != nil {
		return err
	}
	if !out.Status {
		return fmt.Errorf("nimbuspost cancel rejected for %s", trackingNumber)
	}
	return nil
}

func (c *NimbuspostClient) FetchLabel(ctx context.Context, trackingNumber string) ([]byte, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/shipments/label/" + strings.TrimSpace(trackingNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("nimbuspost label fetch failed: status=%d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}

func (c *NimbuspostClient) call(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.authToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, merr := json.Marshal(body)
		if merr != nil {
			return merr
		}
		reader = bytes.NewReader(payload)
	}

	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("nimbuspost request failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, out)
}
