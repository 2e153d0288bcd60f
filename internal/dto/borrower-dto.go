package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

// CreateBorrowerDTO: company задаёт только суперпользователь, остальным она
// подставляется из профиля.
type CreateBorrowerDTO struct {
	LastName       string      `json:"last_name" validate:"required,max=255"`
	FirstName      string      `json:"first_name" validate:"required,max=255"`
	MiddleName     string      `json:"middle_name" validate:"omitempty,max=255"`
	BirthDate      string      `json:"birth_date" validate:"required,date_only"`
	PhoneNumber    string      `json:"phone_number" validate:"required,phone_e164"`
	PassportNumber string      `json:"passport_number" validate:"required,passport"`
	Score          *int        `json:"score" validate:"required,min=0,max=32767"`
	CompanyID      null.Uint64 `json:"company"`
}

type UpdateBorrowerDTO struct {
	LastName       *string     `json:"last_name,omitempty" validate:"omitempty,min=1,max=255"`
	FirstName      *string     `json:"first_name,omitempty" validate:"omitempty,min=1,max=255"`
	MiddleName     *string     `json:"middle_name,omitempty" validate:"omitempty,max=255"`
	BirthDate      *string     `json:"birth_date,omitempty" validate:"omitempty,date_only"`
	PhoneNumber    *string     `json:"phone_number,omitempty" validate:"omitempty,phone_e164"`
	PassportNumber *string     `json:"passport_number,omitempty" validate:"omitempty,passport"`
	Score          *int        `json:"score,omitempty" validate:"omitempty,min=0,max=32767"`
	CompanyID      null.Uint64 `json:"company"`
}

type BorrowerDTO struct {
	ID             uint64    `json:"id"`
	LastName       string    `json:"last_name"`
	FirstName      string    `json:"first_name"`
	MiddleName     string    `json:"middle_name"`
	BirthDate      string    `json:"birth_date"`
	PhoneNumber    string    `json:"phone_number"`
	PassportNumber string    `json:"passport_number"`
	Score          int       `json:"score"`
	Company        uint64    `json:"company"`
	Created        time.Time `json:"created"`
	Modified       time.Time `json:"modified"`
}
