package dto

import "time"

type OfferDTO struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Company       uint64    `json:"company"`
	RotationStart time.Time `json:"rotation_start"`
	RotationEnd   time.Time `json:"rotation_end"`
	Kind          string    `json:"kind"`
	MinScore      int       `json:"min_score"`
	MaxScore      int       `json:"max_score"`
}

// CreateOfferDTO используется только в /api/admin/offers.
type CreateOfferDTO struct {
	Name          string    `json:"name" validate:"required,max=255"`
	CompanyID     uint64    `json:"company" validate:"required"`
	RotationStart time.Time `json:"rotation_start" validate:"required"`
	RotationEnd   time.Time `json:"rotation_end" validate:"required"`
	Kind          string    `json:"kind" validate:"required,oneof=consumer_credit mortgage car_loan"`
	MinScore      *int      `json:"min_score" validate:"required,min=0,max=32767"`
	MaxScore      *int      `json:"max_score" validate:"required,min=0,max=32767"`
}

type UpdateOfferDTO struct {
	Name          *string    `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	CompanyID     *uint64    `json:"company,omitempty" validate:"omitempty,min=1"`
	RotationStart *time.Time `json:"rotation_start,omitempty"`
	RotationEnd   *time.Time `json:"rotation_end,omitempty"`
	Kind          *string    `json:"kind,omitempty" validate:"omitempty,oneof=consumer_credit mortgage car_loan"`
	MinScore      *int       `json:"min_score,omitempty" validate:"omitempty,min=0,max=32767"`
	MaxScore      *int       `json:"max_score,omitempty" validate:"omitempty,min=0,max=32767"`
}
