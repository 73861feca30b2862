package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"training-enrollment-platform/internal/domain"
	"training-enrollment-platform/internal/domain/ports/adapter"
)

const flutterwaveDefaultBaseURL = "https://api.flutterwave.com/v3"

var _ adapter.PaymentGateway = (*FlutterwaveGateway)(nil)

// FlutterwaveGateway implements adapter.PaymentGateway using direct HTTP calls.
type FlutterwaveGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewFlutterwaveGateway(secretKey, baseURL string) (*FlutterwaveGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("flutterwave secret key: %w", domain.ErrConfigMissing)
	}
	if baseURL == "" {
		baseURL = flutterwaveDefaultBaseURL
	}
	return &FlutterwaveGateway{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{},
	}, nil
}

func (g *FlutterwaveGateway) Name() string { return "flutterwave" }

type flutterwaveInitResponse struct {
	Status  string `json:"status"` // "success" | "error"
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

type flutterwaveVerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string  `json:"status"` // "successful" | "failed" | "pending"
		TxRef  string  `json:"tx_ref"`
		FlwRef string  `json:"flw_ref"`
		Amount float64 `json:"amount"`
	} `json:"data"`
}

func (g *FlutterwaveGateway) Initialize(ctx context.Context, req adapter.InitRequest) (adapter.InitResult, error) {
	// Flutterwave amounts are major units.
	body := map[string]interface{}{
		"tx_ref":       req.Reference,
		"amount":       float64(req.Amount) / 100,
		"currency":     req.Currency,
		"redirect_url": req.CallbackURL,
		"customer": map[string]interface{}{
			"email": req.Email,
		},
	}
	if req.Meta != nil {
		body["meta"] = req.Meta
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return adapter.InitResult{}, fmt.Errorf("marshal request data: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payments", bytes.NewBuffer(jsonData))
	if err != nil {
		return adapter.InitResult{}, fmt.Errorf("create request: %w", err)
	}
	g.setHeaders(httpReq)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return adapter.InitResult{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.InitResult{}, fmt.Errorf("read response body: %w", err)
	}

	var out flutterwaveInitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return adapter.InitResult{}, fmt.Errorf("unmarshal response: %w, body: %s", err, string(raw))
	}
	if out.Status != "success" {
		return adapter.InitResult{}, fmt.Errorf("flutterwave initialize: %s", out.Message)
	}
	// Flutterwave echoes our tx_ref back on verification; it is the reference.
	return adapter.InitResult{
		AuthorizationURL:  out.Data.Link,
		ProviderReference: req.Reference,
	}, nil
}

func (g *FlutterwaveGateway) Verify(ctx context.Context, reference string) (adapter.VerifyResult, error) {
	u := g.baseURL + "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return adapter.VerifyResult{}, fmt.Errorf("create request: %w", err)
	}
	g.setHeaders(httpReq)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return adapter.VerifyResult{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.VerifyResult{}, fmt.Errorf("read response body: %w", err)
	}

	var out flutterwaveVerifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return adapter.VerifyResult{}, fmt.Errorf("unmarshal response: %w, body: %s", err, string(raw))
	}

	var rawMap map[string]interface{}
	_ = json.Unmarshal(raw, &rawMap)

	if out.Status != "success" || out.Data.Status != "successful" {
		reason := out.Message
		if out.Data.Status != "" {
			reason = fmt.Sprintf("transaction %s", out.Data.Status)
		}
		return adapter.VerifyResult{Success: false, Reason: reason, Raw: rawMap}, nil
	}
	return adapter.VerifyResult{Success: true, Raw: rawMap}, nil
}

func (g *FlutterwaveGateway) setHeaders(r *http.Request) {
	r.Header.Set("Authorization", "Bearer "+g.secretKey)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
}
