package models

// RoleName identifies a role known to the role registry. The registry in
// internal/authz classifies each name as system-wide or semester-scoped and
// maps it to its permitted actions.
type RoleName string

const (
	RoleAdmin           RoleName = "admin"
	RoleAcademicOfficer RoleName = "academic_officer"
	RoleMentor          RoleName = "mentor"
	RoleStudent         RoleName = "student"
	RoleCouncilMember   RoleName = "council_member"
)

// RoleAssignment binds a principal to a role, optionally scoped to a single
// semester. System-wide roles carry a NULL semester_id; semester-scoped roles
// must reference a live semester.
type RoleAssignment struct {
	ID          string   `db:"id" json:"id"`
	PrincipalID string   `db:"principal_id" json:"principal_id"`
	Role        RoleName `db:"role" json:"role"`
	SemesterID  *string  `db:"semester_id" json:"semester_id,omitempty"`
	Active      bool     `db:"active" json:"active"`
	IsDeleted   bool     `db:"is_deleted" json:"is_deleted"`
}
