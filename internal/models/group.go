package models

import "time"

// Group is a thesis group working within one semester.
type Group struct {
	ID         string    `db:"id" json:"id"`
	Code       string    `db:"code" json:"code"`
	SemesterID string    `db:"semester_id" json:"semester_id"`
	TopicID    *string   `db:"topic_id" json:"topic_id,omitempty"`
	IsDeleted  bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GroupMember is a student's membership in a group.
type GroupMember struct {
	ID          string    `db:"id" json:"id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	PrincipalID string    `db:"principal_id" json:"principal_id"`
	SemesterID  string    `db:"semester_id" json:"semester_id"`
	IsLeader    bool      `db:"is_leader" json:"is_leader"`
	IsDeleted   bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// GroupMentor assigns a mentor to a group.
type GroupMentor struct {
	ID          string    `db:"id" json:"id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	PrincipalID string    `db:"principal_id" json:"principal_id"`
	SemesterID  string    `db:"semester_id" json:"semester_id"`
	IsPrimary   bool      `db:"is_primary" json:"is_primary"`
	IsDeleted   bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
