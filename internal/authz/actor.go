package authz

import "loan-broker/internal/entities"

type Role string

const (
	RoleSuperuser          Role = "superuser"
	RolePartner            Role = "partner"
	RoleCreditOrganization Role = "credit_organization"
	RoleUnaffiliated       Role = "unaffiliated"
)

// Actor - аутентифицированный пользователь и, если есть, его компания.
type Actor struct {
	UserID      uint64
	Username    string
	IsSuperuser bool
	Company     *entities.Company
}

func (a *Actor) HasCompany() bool {
	return a != nil && a.Company != nil
}

func (a *Actor) CompanyID() uint64 {
	if !a.HasCompany() {
		return 0
	}
	return a.Company.ID
}

func (a *Actor) IsPartner() bool {
	return a.HasCompany() && a.Company.IsPartner()
}

func (a *Actor) IsCreditOrganization() bool {
	return a.HasCompany() && a.Company.IsCreditOrganization()
}

// Role: суперпользователь важнее привязки к компании.
func (a *Actor) Role() Role {
	switch {
	case a == nil:
		return RoleUnaffiliated
	case a.IsSuperuser:
		return RoleSuperuser
	case a.IsPartner():
		return RolePartner
	case a.IsCreditOrganization():
		return RoleCreditOrganization
	}
	return RoleUnaffiliated
}
