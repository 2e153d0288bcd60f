package entities

import "time"

type CreditRequestStatus string

const (
	StatusNew      CreditRequestStatus = "new"
	StatusSent     CreditRequestStatus = "sent"
	StatusReceived CreditRequestStatus = "received"
	StatusApproved CreditRequestStatus = "approved"
	StatusDenied   CreditRequestStatus = "denied"
	StatusIssued   CreditRequestStatus = "issued"
)

var CreditRequestStatuses = []CreditRequestStatus{
	StatusNew, StatusSent, StatusReceived, StatusApproved, StatusDenied, StatusIssued,
}

func (s CreditRequestStatus) IsValid() bool {
	for _, known := range CreditRequestStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CreditRequest - заявка в кредитную организацию.
// BorrowerCompanyID и OfferCompanyID не хранятся в таблице: они подтягиваются
// join'ом через borrower.company_id и offer.company_id при каждом чтении.
type CreditRequest struct {
	ID         uint64
	Status     CreditRequestStatus
	CreatedAt  time.Time
	SentDate   *time.Time
	BorrowerID uint64
	OfferID    uint64

	BorrowerCompanyID uint64
	OfferCompanyID    uint64

	Borrower *Borrower
}
