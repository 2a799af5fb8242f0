package model

import (
	"time"

	"github.com/google/uuid"
)

// BillingRecord is the placeholder ledger entry written when an
// attendance session closes. The amount stays zero until manual
// reconciliation; settlement falls on the last day of the month the
// session closed in.
type BillingRecord struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OperatorID     uuid.UUID `db:"operator_id" json:"operator_id"`
	SessionID      uuid.UUID `db:"session_id" json:"session_id"`
	Amount         int64     `db:"amount_cents" json:"amount_cents"`
	SettlementDate time.Time `db:"settlement_date" json:"settlement_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// MonthEnd returns the last calendar day of t's month, in t's location.
func MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}
