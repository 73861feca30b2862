package model

import "time"

// Program is the offered course. The enrollment core only ever mutates
// EnrolledCount, incremented exactly once per completed registration fee.
type Program struct {
	ID                 string // UUID
	Name               string
	Description        string
	ApplicationFeeAmt  int64 // minor units
	RegistrationFeeAmt int64
	Capacity           int
	EnrolledCount      int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Trainee is the applicant. Owned by the auth collaborator; read here for
// e-mail delivery and broadcast fanout.
type Trainee struct {
	ID           string // UUID
	Email        string
	FirstName    string
	LastName     string
	RegisteredAt time.Time
}
