package models

import "time"

// Council is a defense council convened for one semester.
type Council struct {
	ID          string     `db:"id" json:"id"`
	Code        string     `db:"code" json:"code"`
	SemesterID  string     `db:"semester_id" json:"semester_id"`
	DefenseDate *time.Time `db:"defense_date" json:"defense_date,omitempty"`
	IsDeleted   bool       `db:"is_deleted" json:"is_deleted"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// CouncilMember seats a principal on a council.
type CouncilMember struct {
	ID          string    `db:"id" json:"id"`
	CouncilID   string    `db:"council_id" json:"council_id"`
	PrincipalID string    `db:"principal_id" json:"principal_id"`
	SemesterID  string    `db:"semester_id" json:"semester_id"`
	Position    string    `db:"position" json:"position"`
	IsDeleted   bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
