package authz

import "github.com/noah-isme/thesis-hub-api/internal/models"

// DenyReason explains a denial in caller-visible terms.
type DenyReason string

const (
	DenyInsufficientRole        DenyReason = "insufficient role"
	DenyMissingSemesterContext  DenyReason = "missing semester context"
	DenyRoleNotValidForSemester DenyReason = "role not valid for semester"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Authorize decides whether a caller holding the given role assignments may
// perform an operation restricted to the required roles, optionally within a
// semester. It is a pure function: callers fetch assignments once per request
// and are responsible for logging denials.
//
// A system-wide role bypasses semester checks only when that role's name is
// itself in the required set. Holding an unrelated system-wide role grants
// nothing; the caller must still match a required role, and a semester-scoped
// match must name the exact semester of the request.
func Authorize(assignments []models.RoleAssignment, required RoleSet, semesterID string) Decision {
	var matched []models.RoleAssignment
	for _, a := range assignments {
		if !a.Active || a.IsDeleted || !required.Contains(a.Role) {
			continue
		}
		if IsSystemWide(a.Role) {
			return allow()
		}
		matched = append(matched, a)
	}

	if len(matched) == 0 {
		return deny(DenyInsufficientRole)
	}

	if semesterID == "" {
		return deny(DenyMissingSemesterContext)
	}

	for _, a := range matched {
		if a.SemesterID != nil && *a.SemesterID == semesterID {
			return allow()
		}
	}
	return deny(DenyRoleNotValidForSemester)
}
