package models

import "time"

// ProgressReport is a weekly status report submitted by a group member.
type ProgressReport struct {
	ID          string    `db:"id" json:"id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	SubmittedBy string    `db:"submitted_by" json:"submitted_by"`
	SemesterID  string    `db:"semester_id" json:"semester_id"`
	Week        int       `db:"week" json:"week"`
	Content     string    `db:"content" json:"content"`
	Feedback    *string   `db:"feedback" json:"feedback,omitempty"`
	IsDeleted   bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Document is a file attached to a topic. The binary itself lives in an
// external store; only the key is tracked here.
type Document struct {
	ID         string    `db:"id" json:"id"`
	TopicID    string    `db:"topic_id" json:"topic_id"`
	UploadedBy string    `db:"uploaded_by" json:"uploaded_by"`
	SemesterID string    `db:"semester_id" json:"semester_id"`
	StorageKey string    `db:"storage_key" json:"storage_key"`
	IsDeleted  bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Student enrolls a principal into a semester's thesis program.
type Student struct {
	ID          string    `db:"id" json:"id"`
	PrincipalID string    `db:"principal_id" json:"principal_id"`
	SemesterID  string    `db:"semester_id" json:"semester_id"`
	StudentCode string    `db:"student_code" json:"student_code"`
	Major       string    `db:"major" json:"major"`
	IsDeleted   bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SystemLog is an operational log row. Cascades never touch it.
type SystemLog struct {
	ID        string    `db:"id" json:"id"`
	ActorID   *string   `db:"actor_id" json:"actor_id,omitempty"`
	Level     string    `db:"level" json:"level"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
