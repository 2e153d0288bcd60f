package services

import (
	"fmt"

	"loan-broker/internal/authz"
	"loan-broker/internal/dto"
	"loan-broker/internal/entities"
	apperrors "loan-broker/pkg/errors"
)

const (
	StatusPolicyPermissive = "permissive"
	StatusPolicyWorkflow   = "workflow"
)

// StatusPolicy решает, можно ли перевести заявку из одного статуса в другой.
type StatusPolicy interface {
	Allows(from, to entities.CreditRequestStatus) bool
}

// PermissiveStatusPolicy разрешает любой переход между известными статусами.
type PermissiveStatusPolicy struct{}

func (PermissiveStatusPolicy) Allows(_, to entities.CreditRequestStatus) bool {
	return to.IsValid()
}

// WorkflowStatusPolicy: new -> sent -> received -> approved|denied, approved -> issued.
// Повторная установка текущего статуса разрешена.
type WorkflowStatusPolicy struct {
	transitions map[entities.CreditRequestStatus][]entities.CreditRequestStatus
}

func NewWorkflowStatusPolicy() WorkflowStatusPolicy {
	return WorkflowStatusPolicy{transitions: map[entities.CreditRequestStatus][]entities.CreditRequestStatus{
		entities.StatusNew:      {entities.StatusSent},
		entities.StatusSent:     {entities.StatusReceived},
		entities.StatusReceived: {entities.StatusApproved, entities.StatusDenied},
		entities.StatusApproved: {entities.StatusIssued},
	}}
}

func (p WorkflowStatusPolicy) Allows(from, to entities.CreditRequestStatus) bool {
	if !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range p.transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func NewStatusPolicy(name string) (StatusPolicy, error) {
	switch name {
	case "", StatusPolicyPermissive:
		return PermissiveStatusPolicy{}, nil
	case StatusPolicyWorkflow:
		return NewWorkflowStatusPolicy(), nil
	}
	return nil, fmt.Errorf("неизвестная политика статусов: %q", name)
}

// CreditRequestLifecycle определяет, какие поля заявки может менять актор.
type CreditRequestLifecycle struct {
	statuses StatusPolicy
}

func NewCreditRequestLifecycle(statuses StatusPolicy) *CreditRequestLifecycle {
	if statuses == nil {
		statuses = PermissiveStatusPolicy{}
	}
	return &CreditRequestLifecycle{statuses: statuses}
}

// Apply возвращает заявку с применёнными изменениями, исходная не меняется.
//
// Суперпользователь меняет любые поля. Кредитная организация-владелец меняет
// только status, остальные присланные поля игнорируются. Партнёр заявки не
// меняет. partial=false (PUT) для суперпользователя затирает sent_date, если
// он не прислан.
func (l *CreditRequestLifecycle) Apply(actor *authz.Actor, current entities.CreditRequest, changes dto.UpdateCreditRequestDTO, partial bool) (entities.CreditRequest, error) {
	if actor == nil {
		return current, apperrors.ErrUnauthorized
	}

	next := current
	switch {
	case actor.IsSuperuser:
		if changes.BorrowerID.Valid {
			next.BorrowerID = changes.BorrowerID.Uint64
		}
		if changes.OfferID.Valid {
			next.OfferID = changes.OfferID.Uint64
		}
		if changes.SentDate.Valid {
			sentDate := changes.SentDate.Time
			next.SentDate = &sentDate
		} else if !partial {
			next.SentDate = nil
		}
	case actor.IsCreditOrganization() && current.OfferCompanyID == actor.CompanyID():
		// только status
	default:
		return current, fmt.Errorf("%w: заявку может менять только суперпользователь или кредитная организация", apperrors.ErrForbidden)
	}

	if changes.Status != nil {
		status := entities.CreditRequestStatus(*changes.Status)
		if !status.IsValid() {
			return current, apperrors.NewFieldError("status", fmt.Sprintf("неизвестный статус %q", status))
		}
		if !l.statuses.Allows(current.Status, status) {
			return current, apperrors.NewFieldError("status",
				fmt.Sprintf("переход из %q в %q не разрешён", current.Status, status))
		}
		next.Status = status
	}

	if next.BorrowerID != current.BorrowerID || next.OfferID != current.OfferID {
		next.Borrower = nil
	}
	return next, nil
}
