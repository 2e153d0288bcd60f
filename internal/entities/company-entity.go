package entities

import "time"

type CompanyKind string

const (
	CompanyKindCreditOrganization CompanyKind = "credit_organization"
	CompanyKindPartner            CompanyKind = "partner"
)

func (k CompanyKind) IsValid() bool {
	return k == CompanyKindCreditOrganization || k == CompanyKindPartner
}

// Company связана ровно с одним пользователем; тип компании задаёт роль пользователя.
type Company struct {
	ID        uint64
	Name      string
	Kind      CompanyKind
	UserID    uint64
	CreatedAt time.Time
}

func (c *Company) IsPartner() bool {
	return c != nil && c.Kind == CompanyKindPartner
}

func (c *Company) IsCreditOrganization() bool {
	return c != nil && c.Kind == CompanyKindCreditOrganization
}
