package contentstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// PaymentIntent mirrors the read-only view the payment provider exposes.
// The store never mutates payment state; admin rental views consume it as
// returned.
type PaymentIntent struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	Amount        int64    `json:"amount"`
	CaptureMethod string   `json:"captureMethod"`
	PaymentMethod string   `json:"paymentMethod"`
	Charges       []Charge `json:"charges"`
}

type Charge struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
	ReceiptURL string `json:"receiptUrl,omitempty"`
}

// PaymentProvider is the boundary to the payment SDK.
type PaymentProvider interface {
	RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

// HTTPPaymentProvider fetches intents from the provider's REST surface.
type HTTPPaymentProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func (p *HTTPPaymentProvider) RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/payment_intents/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment provider: status %d for intent %s", resp.StatusCode, id)
	}
	var intent PaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
