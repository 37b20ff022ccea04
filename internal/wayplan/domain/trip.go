package domain

import "time"

// Trip is the planner's root aggregate. Its rows are row-secured: the store
// binds the caller's account id into connection session state and the engine
// filters on account_id, so repository queries carry no owner predicates.
type Trip struct {
	ID          string
	AccountID   string
	Name        string
	Destination string
	StartsOn    time.Time
	EndsOn      time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
