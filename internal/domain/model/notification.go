package model

import "time"

type NotificationKind string

const (
	NotificationPaymentConfirmed     NotificationKind = "payment_confirmed"
	NotificationRegistrationComplete NotificationKind = "registration_complete"
	NotificationAnnouncement         NotificationKind = "announcement"
	NotificationPaymentTimeout       NotificationKind = "payment_timeout"
)

// Notification is a persisted, user-facing event. Rows are immutable once
// written except for the Read flag, which only the owner may flip.
type Notification struct {
	ID        string // ULID, sortable by creation time
	UserID    string
	Kind      NotificationKind
	Title     string
	Message   string
	Meta      map[string]interface{}
	Read      bool
	CreatedAt time.Time
}
