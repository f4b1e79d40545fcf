package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusInProgress marks a production-plan row whose job is running on the line.
const StatusInProgress = "W"

// StatusPending is reported for plan rows that carry no work status yet.
const StatusPending = "PENDING"

// ShortageRow is one (line, item) record returned by a shortage query.
type ShortageRow struct {
	Date        string
	Line        string
	Sequence    string
	WorkStatus  string
	ProductItem string
	Item        string
	ItemName    string
	Required    decimal.Decimal
	Used        decimal.Decimal
	OnHand      decimal.Decimal
	Standby     decimal.Decimal
	LotIn       decimal.Decimal
}

// InProgress reports whether the plan row is currently being worked on.
func (r ShortageRow) InProgress() bool {
	return r.WorkStatus == StatusInProgress
}

// Outstanding is the part of the requirement not yet consumed.
func (r ShortageRow) Outstanding() decimal.Decimal {
	return r.Required.Sub(r.Used)
}

// Shortage is the outstanding requirement minus what is on hand.
func (r ShortageRow) Shortage() decimal.Decimal {
	return r.Outstanding().Sub(r.OnHand)
}

// ExpectedRemaining is the stock left after the outstanding requirement is consumed.
func (r ShortageRow) ExpectedRemaining() decimal.Decimal {
	return r.OnHand.Sub(r.Outstanding())
}

// CheckOutcome summarizes a single pipeline run.
type CheckOutcome struct {
	Report    string
	StartedAt time.Time
	Rows      int
	Err       error
	NextRunAt time.Time
}
