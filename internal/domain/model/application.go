package model

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Application is one trainee's enrollment attempt in one program.
//
// RegistrationNumber is assigned exactly once, when the registration fee
// completes; it is non-nil if and only if RegistrationFeePaid is true.
type Application struct {
	ID                  string // UUID
	TraineeID           string // UUID
	ProgramID           string // UUID
	Status              ApplicationStatus
	ApplicationFeePaid  bool
	RegistrationFeePaid bool
	RegistrationNumber  *string
	AdminNotes          string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
