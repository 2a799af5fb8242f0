package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessLevel is the coarse permission code assigned to an operator.
// Level 1 is unrestricted; levels 2-6 each unlock exactly one room.
type AccessLevel int

const (
	AccessAll        AccessLevel = 1
	AccessPhysician  AccessLevel = 2
	AccessExam       AccessLevel = 3
	AccessCollection AccessLevel = 4
	AccessAudiometry AccessLevel = 5
	AccessXRay       AccessLevel = 6
)

// Operator is a clinic staff member able to call patients.
type Operator struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	Email        string      `db:"email" json:"email"`
	PasswordHash string      `db:"password_hash" json:"-"`
	AccessLevel  AccessLevel `db:"access_level" json:"access_level"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// Actor is the explicit operator context threaded through every core
// operation, resolved once per request by the auth middleware. Core
// services never consult ambient/global auth state.
type Actor struct {
	OperatorID  uuid.UUID   `json:"operator_id"`
	Name        string      `json:"name"`
	AccessLevel AccessLevel `json:"access_level"`
}

type CreateOperatorRequest struct {
	Name        string      `json:"name" binding:"required"`
	Email       string      `json:"email" binding:"required,email"`
	Password    string      `json:"password" binding:"required,min=8"`
	AccessLevel AccessLevel `json:"access_level" binding:"required,min=1,max=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string    `json:"token"`
	Operator *Operator `json:"operator"`
}
