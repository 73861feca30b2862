package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"training-enrollment-platform/internal/domain"
	"training-enrollment-platform/internal/domain/ports/adapter"
)

const paystackDefaultBaseURL = "https://api.paystack.co"

var _ adapter.PaymentGateway = (*PaystackGateway)(nil)

// PaystackGateway implements adapter.PaymentGateway using direct HTTP calls.
type PaystackGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewPaystackGateway creates a Paystack gateway. baseURL is overridable for tests;
// empty selects the production API.
func NewPaystackGateway(secretKey, baseURL string) (*PaystackGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("paystack secret key: %w", domain.ErrConfigMissing)
	}
	if baseURL == "" {
		baseURL = paystackDefaultBaseURL
	}
	return &PaystackGateway{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{},
	}, nil
}

func (g *PaystackGateway) Name() string { return "paystack" }

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status          string                 `json:"status"` // "success" | "failed" | "abandoned"
		Reference       string                 `json:"reference"`
		Amount          int64                  `json:"amount"`
		GatewayResponse string                 `json:"gateway_response"`
		Metadata        map[string]interface{} `json:"metadata"`
	} `json:"data"`
}

func (g *PaystackGateway) Initialize(ctx context.Context, req adapter.InitRequest) (adapter.InitResult, error) {
	body := map[string]interface{}{
		"amount":       req.Amount,
		"email":        req.Email,
		"reference":    req.Reference,
		"currency":     req.Currency,
		"callback_url": req.CallbackURL,
	}
	if req.Meta != nil {
		body["metadata"] = req.Meta
	}

	var out paystackInitResponse
	if err := g.post(ctx, "/transaction/initialize", body, &out); err != nil {
		return adapter.InitResult{}, err
	}
	if !out.Status {
		return adapter.InitResult{}, fmt.Errorf("paystack initialize: %s", out.Message)
	}
	return adapter.InitResult{
		AuthorizationURL:  out.Data.AuthorizationURL,
		ProviderReference: out.Data.Reference,
	}, nil
}

func (g *PaystackGateway) Verify(ctx context.Context, reference string) (adapter.VerifyResult, error) {
	url := g.baseURL + "/transaction/verify/" + reference
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return adapter.VerifyResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return adapter.VerifyResult{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.VerifyResult{}, fmt.Errorf("read response body: %w", err)
	}

	var out paystackVerifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return adapter.VerifyResult{}, fmt.Errorf("unmarshal response: %w, body: %s", err, string(raw))
	}

	var rawMap map[string]interface{}
	_ = json.Unmarshal(raw, &rawMap)

	if !out.Status || out.Data.Status != "success" {
		reason := out.Data.GatewayResponse
		if reason == "" {
			reason = out.Message
		}
		return adapter.VerifyResult{Success: false, Reason: reason, Raw: rawMap}, nil
	}
	return adapter.VerifyResult{Success: true, Raw: rawMap}, nil
}

func (g *PaystackGateway) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request data: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w, body: %s", err, string(raw))
	}
	return nil
}
