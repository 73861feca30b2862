package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // created; awaiting gateway confirmation
	PaymentStatusCompleted PaymentStatus = "completed" // verified OK at provider; terminal
	PaymentStatusFailed    PaymentStatus = "failed"    // provider reported an unrecoverable failure
)

type PaymentType string

const (
	PaymentTypeApplicationFee  PaymentType = "application_fee"
	PaymentTypeRegistrationFee PaymentType = "registration_fee"
)

type PaymentProvider string

const (
	ProviderPaystack    PaymentProvider = "paystack"
	ProviderFlutterwave PaymentProvider = "flutterwave"
)

// Payment records one attempt to collect one fee through one external gateway.
type Payment struct {
	ID            string // UUID
	ApplicationID string // UUID -> Application
	TraineeID     string // UUID -> Trainee
	Provider      PaymentProvider
	Type          PaymentType
	Amount        int64  // minor units, to avoid float errors
	Currency      string // ISO-ish code, e.g. "NGN"
	// Reference is our transaction reference handed to the provider at
	// initialization. ProviderReference is what the provider echoes back;
	// unique once set.
	Reference         string
	ProviderReference string
	Status            PaymentStatus
	Raw               map[string]interface{} // last gateway verify payload (JSONB)
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PaidAt            *time.Time // set when completed
}

// Completed reports whether the payment reached its terminal success state.
func (p *Payment) Completed() bool { return p.Status == PaymentStatusCompleted }
