package model

import "time"

// Receipt is the proof of one completed Payment. Exactly one per payment;
// ReceiptNumber is unique.
type Receipt struct {
	ID            string // UUID
	PaymentID     string // UUID -> Payment
	TraineeID     string // UUID -> Trainee
	ReceiptNumber string
	CreatedAt     time.Time
}
