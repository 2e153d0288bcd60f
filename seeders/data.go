package seeders

import "time"

type demoCompany struct {
	Username string
	Name     string
	Kind     string
}

type demoOffer struct {
	Name          string
	Kind          string
	RotationStart time.Time
	RotationEnd   time.Time
	MinScore      int
	MaxScore      int
}

var (
	demoPartner   = demoCompany{Username: "partner", Name: "Кредитный брокер", Kind: "partner"}
	demoCreditOrg = demoCompany{Username: "bank", Name: "Банк", Kind: "credit_organization"}
)

// Одно предложение активно всегда, одно - давно в архиве.
var demoOffers = []demoOffer{
	{
		Name: "Потребительский кредит", Kind: "consumer_credit",
		RotationStart: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		RotationEnd:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
		MinScore:      100, MaxScore: 200,
	},
	{
		Name: "Ипотека", Kind: "mortgage",
		RotationStart: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		RotationEnd:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
		MinScore:      300, MaxScore: 1000,
	},
	{
		Name: "Автокредит (архив)", Kind: "car_loan",
		RotationStart: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		RotationEnd:   time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
		MinScore:      0, MaxScore: 1000,
	},
}
