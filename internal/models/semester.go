package models

import "time"

// SemesterStatus tracks the time-driven lifecycle of a semester.
type SemesterStatus string

const (
	SemesterUpcoming SemesterStatus = "UPCOMING"
	SemesterActive   SemesterStatus = "ACTIVE"
	SemesterComplete SemesterStatus = "COMPLETE"
)

// Semester models one academic period. Status transitions are driven by the
// background sweeper based on start/end dates; deletion only ever happens
// through the lifecycle coordinator.
type Semester struct {
	ID        string         `db:"id" json:"id"`
	Code      string         `db:"code" json:"code"`
	StartDate time.Time      `db:"start_date" json:"start_date"`
	EndDate   time.Time      `db:"end_date" json:"end_date"`
	Status    SemesterStatus `db:"status" json:"status"`
	IsDeleted bool           `db:"is_deleted" json:"is_deleted"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// ExpectedStatus returns the status the semester should hold at the given
// instant based on its date range.
func (s Semester) ExpectedStatus(now time.Time) SemesterStatus {
	switch {
	case now.Before(s.StartDate):
		return SemesterUpcoming
	case now.After(s.EndDate):
		return SemesterComplete
	default:
		return SemesterActive
	}
}

// SemesterFilter defines filters supported by semester list endpoints.
type SemesterFilter struct {
	Status         SemesterStatus
	IncludeDeleted bool
	Page           int
	PageSize       int
}
