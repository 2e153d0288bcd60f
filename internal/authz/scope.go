package authz

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"loan-broker/internal/activity"
	"loan-broker/internal/entities"
)

// Алиасы таблиц, под которыми репозитории строят запросы.
const (
	CompanyAlias       = "c"
	BorrowerAlias      = "b"
	OfferAlias         = "o"
	CreditRequestAlias = "cr"
)

var (
	matchAll  sq.Sqlizer = sq.Expr("TRUE")
	matchNone sq.Sqlizer = sq.Expr("FALSE")
)

// Scope возвращает предикат, которым ограничивается выборка сущности для актора.
// Для credit_request это OR владения через анкету и через предложение.
func Scope(actor *Actor, entity Entity, at time.Time) sq.Sqlizer {
	if actor == nil {
		return matchNone
	}
	if actor.IsSuperuser {
		return matchAll
	}

	switch entity {
	case EntityCompany:
		if !actor.HasCompany() {
			return matchNone
		}
		return sq.Eq{CompanyAlias + ".id": actor.CompanyID()}

	case EntityBorrower:
		if !actor.IsPartner() {
			return matchNone
		}
		return sq.Eq{BorrowerAlias + ".company_id": actor.CompanyID()}

	case EntityOffer:
		if !actor.IsPartner() {
			return matchNone
		}
		return activity.ActiveAt(OfferAlias, at)

	case EntityCreditRequest:
		or := sq.Or{}
		if actor.IsPartner() {
			or = append(or, sq.Eq{BorrowerAlias + ".company_id": actor.CompanyID()})
		}
		if actor.IsCreditOrganization() {
			or = append(or, sq.Eq{OfferAlias + ".company_id": actor.CompanyID()})
		}
		if len(or) == 0 {
			return matchNone
		}
		return or
	}

	return matchNone
}

// InScope - то же правило, что и Scope, но для уже загруженной записи.
func InScope(actor *Actor, target interface{}, at time.Time) bool {
	if actor == nil {
		return false
	}
	if actor.IsSuperuser {
		_, known := EntityOf(target)
		return known
	}

	switch t := target.(type) {
	case *entities.Company:
		return actor.HasCompany() && t.ID == actor.CompanyID()
	case *entities.Borrower:
		return actor.IsPartner() && t.CompanyID == actor.CompanyID()
	case *entities.Offer:
		return actor.IsPartner() && activity.IsActive(t, at)
	case *entities.CreditRequest:
		if actor.IsPartner() && t.BorrowerCompanyID == actor.CompanyID() {
			return true
		}
		if actor.IsCreditOrganization() && t.OfferCompanyID == actor.CompanyID() {
			return true
		}
	}
	return false
}
