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
	"time"

	"github.com/BrewBoxLabs/BrewBox/internal/pkg/env"
)

const defaultDTDCBaseURL = "https://dtdcapi.shipsy.io/api/customer/integration"

// DTDCClient is a thin wrapper over the DTDC consignment API.
type DTDCClient struct {
	APIKey       string
	CustomerCode string
	BaseURL      string

	HTTPClient *http.Client
}

func NewDTDCClientFromEnv() *DTDCClient {
	return &DTDCClient{
		APIKey:       strings.TrimSpace(env.GetEnv("DTDC_API_KEY", "")),
		CustomerCode: strings.TrimSpace(env.GetEnv("DTDC_CUSTOMER_CODE", "")),
		BaseURL:      strings.TrimSpace(env.GetEnv("DTDC_API_BASE_URL", defaultDTDCBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *DTDCClient) Name() string { return ProviderDTDC }

func (c *DTDCClient) CreateShipment(ctx context.Context, req ShipmentRequest) (*Shipment, error) {
	if req.Address.IsEmpty() {
		return nil, errors.New("shipment requires a shipping address")
	}

	body := map[string]interface{}{
		"customer_code":    c.CustomerCode,
		"reference_number": req.Reference,
		"service_type_id":  "B2C PRIORITY",
		"load_type":        "NON-DOCUMENT",
		"weight":           float64(req.WeightGrams) / 1000,
		"cod_amount":       req.CODAmount,
		"destination_details": map[string]string{
			"name":           req.Address.Name,
			"phone":          req.Address.Phone,
			"address_line_1": req.Address.Line1,
			"address_line_2": req.Address.Line2,
			"city":           req.Address.City,
			"state":          req.Address.State,
			"pincode":        req.Address.PostalCode,
		},
	}

	var out struct {
		Success bool `json:"success"`
		Data    []struct {
			ReferenceNumber string `json:"reference_number"`
			AWBNumber       string `json:"reference_number_awb"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/consignment/softdata", body, &out); err != nil {
		return nil, err
	}
	if !out.Success || len(out.Data) == 0 || strings.TrimSpace(out.Data[0].AWBNumber) == "" {
		return nil, errors.New("dtdc consignment creation returned no AWB")
	}

	return &Shipment{
		CourierName:    ProviderDTDC,
		TrackingNumber: out.Data[0].AWBNumber,
	}, nil
}

func (c *DTDCClient) TrackShipment(ctx context.Context, trackingNumber string) ([]TrackingEvent, error) {
	body := map[string]string{
		"trkType":   "cnno",
		"strcnno":   strings.TrimSpace(trackingNumber),
		"addtnlDtl": "Y",
	}

	var out struct {
		TrackDetails []struct {
			Action string `json:"strAction"`
			Origin string `json:"strOrigin"`
			Date   string `json:"strActionDate"`
			Time   string `json:"strActionTime"`
		} `json:"trackDetails"`
	}
	if err := c.post(ctx, "/consignment/track", body, &out); err != nil {
		return nil, err
	}

	events := make([]TrackingEvent, 0, len(out.TrackDetails))
	for _, d := range out.TrackDetails {
		ts, _ := time.Parse("02012006 1504", d.Date+" "+d.Time)
		events = append(events, TrackingEvent{
			Status:    d.Action,
			Location:  d.Origin,
			Timestamp: ts,
		})
	}
	return events, nil
}

func (c *DTDCClient) CancelShipment(ctx context.Context, trackingNumber string) error {
	body := map[string]interface{}{
		"AWBNo":        []string{strings.TrimSpace(trackingNumber)},
		"customerCode": c.CustomerCode,
	}
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.post(ctx, "/consignment/cancel", body, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("dtdc cancel rejected for %s", trackingNumber)
	}
	return nil
}

func (c *DTDCClient) FetchLabel(ctx context.Context, trackingNumber string) ([]byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + "/consignment/shippinglabel/stream?reference_number=" + strings.TrimSpace(trackingNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("dtdc label fetch failed: status=%d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}

func (c *DTDCClient) post(ctx context.Context, path string, body, out interface{}) error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("DTDC_API_KEY is not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("dtdc request failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, out)
}
