package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

// CreateCreditRequestDTO: status и sent_date при создании не принимаются.
// Без offer подбор идёт по всем активным предложениям.
type CreateCreditRequestDTO struct {
	BorrowerID uint64      `json:"borrower" validate:"required"`
	OfferID    null.Uint64 `json:"offer"`
}

// UpdateCreditRequestDTO: для кредитной организации учитывается только status,
// остальные поля молча игнорируются.
type UpdateCreditRequestDTO struct {
	Status     *string     `json:"status,omitempty" validate:"omitempty,oneof=new sent received approved denied issued"`
	SentDate   null.Time   `json:"sent_date"`
	BorrowerID null.Uint64 `json:"borrower"`
	OfferID    null.Uint64 `json:"offer"`
}

type CreditRequestDTO struct {
	ID             uint64       `json:"id"`
	Created        time.Time    `json:"created"`
	SentDate       *time.Time   `json:"sent_date"`
	Status         string       `json:"status"`
	Borrower       uint64       `json:"borrower"`
	BorrowerDetail *BorrowerDTO `json:"borrower_detail,omitempty"`
	Offer          uint64       `json:"offer"`
}
