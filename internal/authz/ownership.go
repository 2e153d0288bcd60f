package authz

import "loan-broker/internal/entities"

// ownerPaths перечисляет пути владения для каждой сущности. Каждый путь
// возвращает id компании-владельца; запись принадлежит актору, если хотя бы
// один путь ведёт к его компании.
var ownerPaths = map[Entity][]func(target interface{}) (uint64, bool){
	EntityCompany: {
		func(t interface{}) (uint64, bool) {
			c, ok := t.(*entities.Company)
			if !ok || c == nil {
				return 0, false
			}
			return c.ID, true
		},
	},
	EntityBorrower: {
		func(t interface{}) (uint64, bool) {
			b, ok := t.(*entities.Borrower)
			if !ok || b == nil {
				return 0, false
			}
			return b.CompanyID, true
		},
	},
	EntityCreditRequest: {
		// borrower -> company
		func(t interface{}) (uint64, bool) {
			cr, ok := t.(*entities.CreditRequest)
			if !ok || cr == nil {
				return 0, false
			}
			return cr.BorrowerCompanyID, true
		},
		// offer -> company
		func(t interface{}) (uint64, bool) {
			cr, ok := t.(*entities.CreditRequest)
			if !ok || cr == nil {
				return 0, false
			}
			return cr.OfferCompanyID, true
		},
	},
}

// EntityOf определяет тип сущности по значению.
func EntityOf(target interface{}) (Entity, bool) {
	switch target.(type) {
	case *entities.Company:
		return EntityCompany, true
	case *entities.Borrower:
		return EntityBorrower, true
	case *entities.Offer:
		return EntityOffer, true
	case *entities.CreditRequest:
		return EntityCreditRequest, true
	}
	return "", false
}

// IsOwner проходит все пути владения сущности. Для сущностей без путей
// (предложения) владельцев нет.
func IsOwner(target interface{}, actor *Actor) bool {
	if !actor.HasCompany() {
		return false
	}
	entity, ok := EntityOf(target)
	if !ok {
		return false
	}
	for _, path := range ownerPaths[entity] {
		if companyID, ok := path(target); ok && companyID != 0 && companyID == actor.CompanyID() {
			return true
		}
	}
	return false
}
