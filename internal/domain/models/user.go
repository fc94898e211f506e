package models

import (
	"time"
)

type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Tokens    int       `json:"tokens" db:"tokens"` // usage-credit balance, never negative
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type UpdateUserRequest struct {
	Name string `json:"name"`
}

type CreditTokensRequest struct {
	Amount int `json:"amount"`
}

// UserProfile is the shape returned by the user endpoints.
type UserProfile struct {
	Name   string `json:"name"`
	Tokens int    `json:"tokens"`
}
