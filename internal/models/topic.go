package models

import "time"

// TopicStatus tracks a thesis topic through review.
type TopicStatus string

const (
	TopicPending  TopicStatus = "PENDING"
	TopicApproved TopicStatus = "APPROVED"
	TopicRejected TopicStatus = "REJECTED"
)

// Topic is a thesis/capstone topic proposed within one semester.
type Topic struct {
	ID         string      `db:"id" json:"id"`
	Code       string      `db:"code" json:"code"`
	Title      string      `db:"title" json:"title"`
	CreatedBy  string      `db:"created_by" json:"created_by"`
	SemesterID string      `db:"semester_id" json:"semester_id"`
	Status     TopicStatus `db:"status" json:"status"`
	IsDeleted  bool        `db:"is_deleted" json:"is_deleted"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// TopicRegistration links a group to a topic. Active registrations block
// deleting the topic.
type TopicRegistration struct {
	ID         string    `db:"id" json:"id"`
	TopicID    string    `db:"topic_id" json:"topic_id"`
	GroupID    string    `db:"group_id" json:"group_id"`
	SemesterID string    `db:"semester_id" json:"semester_id"`
	Status     string    `db:"status" json:"status"`
	IsDeleted  bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TopicFilter defines filters supported by topic list endpoints.
type TopicFilter struct {
	SemesterID     string
	CreatedBy      string
	Status         TopicStatus
	IncludeDeleted bool
	Search         string
	Page           int
	PageSize       int
}
