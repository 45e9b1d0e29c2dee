package models

import "time"

// AuditSeverity grades audit records.
type AuditSeverity string

const (
	AuditInfo    AuditSeverity = "INFO"
	AuditWarning AuditSeverity = "WARNING"
	AuditError   AuditSeverity = "ERROR"
)

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionTokenRefresh    = "TOKEN_REFRESH"
	AuditActionAccessDenied    = "ACCESS_DENIED"
	AuditActionCascadeDelete   = "CASCADE_DELETE"
	AuditActionCascadeRestore  = "CASCADE_RESTORE"
	AuditActionPrincipalCreate = "PRINCIPAL_CREATE"
	AuditActionPrincipalUpdate = "PRINCIPAL_UPDATE"
	AuditActionSemesterCreate  = "SEMESTER_CREATE"
	AuditActionSemesterUpdate  = "SEMESTER_UPDATE"
	AuditActionTopicCreate     = "TOPIC_CREATE"
	AuditActionTopicUpdate     = "TOPIC_UPDATE"
	AuditActionRoleGrant       = "ROLE_GRANT"
	AuditActionRoleRevoke      = "ROLE_REVOKE"
	AuditActionAuditExport     = "AUDIT_EXPORT"
)

// AuditRecord is an append-only trail entry. Records are never mutated or
// deleted; cascades write their summary record in the same transaction as the
// cascade itself.
type AuditRecord struct {
	ID          string        `db:"id" json:"id"`
	ActorID     *string       `db:"actor_id" json:"actor_id,omitempty"`
	Action      string        `db:"action" json:"action"`
	EntityType  string        `db:"entity_type" json:"entity_type"`
	EntityID    *string       `db:"entity_id" json:"entity_id,omitempty"`
	Severity    AuditSeverity `db:"severity" json:"severity"`
	Description string        `db:"description" json:"description"`
	Metadata    []byte        `db:"metadata" json:"metadata,omitempty"`
	Before      []byte        `db:"before_state" json:"before,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// AuditFilter defines filters supported by audit list endpoints.
type AuditFilter struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Severity   AuditSeverity
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}
