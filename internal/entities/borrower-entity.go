package entities

import "time"

// Borrower - анкета клиента. Принадлежит компании-партнёру.
type Borrower struct {
	ID             uint64
	LastName       string
	FirstName      string
	MiddleName     string
	BirthDate      time.Time
	PhoneNumber    string
	PassportNumber string
	Score          int
	CompanyID      uint64
	CreatedAt      time.Time
	ModifiedAt     time.Time
}
