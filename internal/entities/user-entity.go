package entities

import "time"

type User struct {
	ID           uint64
	Username     string
	PasswordHash string
	IsSuperuser  bool
	IsActive     bool
	CreatedAt    time.Time
}
