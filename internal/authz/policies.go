package authz

// Policy - независимая проверка. Collection вызывается для любой операции,
// Object - только для операций над конкретной записью. nil означает "разрешено".
type Policy struct {
	Name       string
	Collection func(actor *Actor, op Operation) bool
	Object     func(actor *Actor, op Operation, target interface{}) bool
}

// ListForCompanyOrSuperuser: доступ только суперпользователю или пользователю с компанией.
var ListForCompanyOrSuperuser = Policy{
	Name: "list_for_company_or_superuser",
	Collection: func(actor *Actor, _ Operation) bool {
		return actor != nil && (actor.IsSuperuser || actor.HasCompany())
	},
}

// ListForPartnerOrSuperuser: доступ только суперпользователю или партнёру.
var ListForPartnerOrSuperuser = Policy{
	Name: "list_for_partner_or_superuser",
	Collection: func(actor *Actor, _ Operation) bool {
		return actor != nil && (actor.IsSuperuser || actor.IsPartner())
	},
}

var DetailForOwnerOrSuperuser = Policy{
	Name: "detail_for_owner_or_superuser",
	Object: func(actor *Actor, _ Operation, target interface{}) bool {
		return actor.IsSuperuser || IsOwner(target, actor)
	},
}

var CreateForPartnerOrSuperuser = Policy{
	Name: "create_for_partner_or_superuser",
	Collection: func(actor *Actor, op Operation) bool {
		if op != OpCreate {
			return true
		}
		return actor.IsSuperuser || actor.IsPartner()
	},
}

var EditForSuperuser = Policy{
	Name: "edit_for_superuser",
	Object: func(actor *Actor, op Operation, _ interface{}) bool {
		return op != OpUpdate || actor.IsSuperuser
	},
}

var EditForOwnerOrSuperuser = Policy{
	Name: "edit_for_owner_or_superuser",
	Object: func(actor *Actor, op Operation, target interface{}) bool {
		return op != OpUpdate || actor.IsSuperuser || IsOwner(target, actor)
	},
}

var EditForSuperuserOrCreditOrganization = Policy{
	Name: "edit_for_superuser_or_credit_organization",
	Object: func(actor *Actor, op Operation, _ interface{}) bool {
		return op != OpUpdate || actor.IsSuperuser || actor.IsCreditOrganization()
	},
}

var DeleteForSuperuser = Policy{
	Name: "delete_for_superuser",
	Object: func(actor *Actor, op Operation, _ interface{}) bool {
		return op != OpDelete || actor.IsSuperuser
	},
}

// ReadOnly закрывает создание, изменение и удаление для всех.
var ReadOnly = Policy{
	Name: "read_only",
	Collection: func(_ *Actor, op Operation) bool {
		return op.IsSafe()
	},
}

// DefaultPolicies - набор проверок для каждой сущности. Операция проходит,
// только если её разрешают все проверки набора.
func DefaultPolicies() map[Entity][]Policy {
	return map[Entity][]Policy{
		EntityCompany: {
			ListForCompanyOrSuperuser,
			DetailForOwnerOrSuperuser,
			ReadOnly,
		},
		EntityBorrower: {
			ListForPartnerOrSuperuser,
			DetailForOwnerOrSuperuser,
			CreateForPartnerOrSuperuser,
			EditForSuperuser,
			DeleteForSuperuser,
		},
		EntityOffer: {
			ListForPartnerOrSuperuser,
			ReadOnly,
		},
		EntityCreditRequest: {
			ListForCompanyOrSuperuser,
			DetailForOwnerOrSuperuser,
			CreateForPartnerOrSuperuser,
			DeleteForSuperuser,
			EditForOwnerOrSuperuser,
			EditForSuperuserOrCreditOrganization,
		},
	}
}
