package entities

import "time"

type OfferKind string

const (
	OfferKindConsumerCredit OfferKind = "consumer_credit"
	OfferKindMortgage       OfferKind = "mortgage"
	OfferKindCarLoan        OfferKind = "car_loan"
)

func (k OfferKind) IsValid() bool {
	switch k {
	case OfferKindConsumerCredit, OfferKindMortgage, OfferKindCarLoan:
		return true
	}
	return false
}

// Offer - предложение кредитной организации, активное в окне ротации [RotationStart, RotationEnd].
type Offer struct {
	ID            uint64
	Name          string
	CompanyID     uint64
	RotationStart time.Time
	RotationEnd   time.Time
	Kind          OfferKind
	MinScore      int
	MaxScore      int
	CreatedAt     time.Time
	ModifiedAt    time.Time
}

// AcceptsScore: границы диапазона включительны.
func (o *Offer) AcceptsScore(score int) bool {
	return o.MinScore <= score && score <= o.MaxScore
}
