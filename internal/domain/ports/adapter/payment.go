package adapter

import "context"

// InitRequest carries everything a provider needs to open a checkout.
type InitRequest struct {
	Amount      int64 // minor units
	Currency    string
	Email       string
	Reference   string // our transaction reference
	CallbackURL string
	Meta        map[string]interface{}
}

// InitResult is the normalized outcome of a checkout initialization.
type InitResult struct {
	AuthorizationURL  string
	ProviderReference string
}

// VerifyResult is the normalized outcome of a verification call. A gateway
// that answers but declines the transaction yields Success=false with a
// human-readable Reason; transport and decode failures surface as errors.
type VerifyResult struct {
	Success bool
	Reason  string
	Raw     map[string]interface{}
}

// PaymentGateway is the port every provider adapter implements.
type PaymentGateway interface {
	Name() string
	Initialize(ctx context.Context, req InitRequest) (InitResult, error)
	Verify(ctx context.Context, reference string) (VerifyResult, error)
}
