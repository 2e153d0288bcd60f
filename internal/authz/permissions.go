// internal/authz/permissions.go
package authz

// Entity - тип записи, к которой проверяется доступ.
type Entity string

const (
	EntityCompany       Entity = "company"
	EntityBorrower      Entity = "borrower"
	EntityOffer         Entity = "offer"
	EntityCreditRequest Entity = "credit_request"
)

// Operation - действие над коллекцией или отдельной записью.
type Operation string

const (
	OpList     Operation = "list"
	OpRetrieve Operation = "retrieve"
	OpCreate   Operation = "create"
	OpUpdate   Operation = "update"
	OpDelete   Operation = "delete"
)

// IsSafe - операции только на чтение.
func (op Operation) IsSafe() bool {
	return op == OpList || op == OpRetrieve
}

// IsObjectLevel - операции над конкретной записью.
func (op Operation) IsObjectLevel() bool {
	return op == OpRetrieve || op == OpUpdate || op == OpDelete
}
