package authz

import (
	"fmt"
	"time"

	apperrors "loan-broker/pkg/errors"
)

// DenyHook вызывается при каждом отказе; используется для метрик.
type DenyHook func(entity Entity, op Operation, policy string)

// Gatekeeper объединяет проверки сущности через AND: операция разрешена,
// только если её разрешают все зарегистрированные проверки.
type Gatekeeper struct {
	policies map[Entity][]Policy
	onDeny   DenyHook
}

func NewGatekeeper(policies map[Entity][]Policy) *Gatekeeper {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Gatekeeper{policies: policies}
}

func (g *Gatekeeper) OnDeny(hook DenyHook) *Gatekeeper {
	g.onDeny = hook
	return g
}

// Register добавляет проверку к сущности, не трогая уже существующие.
func (g *Gatekeeper) Register(entity Entity, policy Policy) {
	g.policies[entity] = append(g.policies[entity], policy)
}

// Authorize - проверка уровня коллекции. Без актора - ErrUnauthorized,
// при отказе любой проверки - ErrForbidden.
func (g *Gatekeeper) Authorize(actor *Actor, entity Entity, op Operation) error {
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	policies, ok := g.policies[entity]
	if !ok {
		return g.deny(entity, op, "unregistered_entity")
	}
	for _, p := range policies {
		if p.Collection != nil && !p.Collection(actor, op) {
			return g.deny(entity, op, p.Name)
		}
	}
	return nil
}

// AuthorizeObject - проверка уровня записи. Вызывается после того, как запись
// найдена в области видимости актора, поэтому отказ здесь - ErrForbidden.
func (g *Gatekeeper) AuthorizeObject(actor *Actor, entity Entity, op Operation, target interface{}) error {
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	for _, p := range g.policies[entity] {
		if p.Object != nil && !p.Object(actor, op, target) {
			return g.deny(entity, op, p.Name)
		}
	}
	return nil
}

// CanAccess - полное решение для одной записи: коллекция, область видимости и
// проверки записи. Для create запись ещё не существует, область не проверяется.
func (g *Gatekeeper) CanAccess(actor *Actor, entity Entity, target interface{}, op Operation, at time.Time) bool {
	if err := g.Authorize(actor, entity, op); err != nil {
		return false
	}
	if op == OpCreate || !op.IsObjectLevel() && target == nil {
		return true
	}
	if !InScope(actor, target, at) {
		return false
	}
	return g.AuthorizeObject(actor, entity, op, target) == nil
}

func (g *Gatekeeper) deny(entity Entity, op Operation, policy string) error {
	if g.onDeny != nil {
		g.onDeny(entity, op, policy)
	}
	return fmt.Errorf("%w: %s %s (%s)", apperrors.ErrForbidden, op, entity, policy)
}
