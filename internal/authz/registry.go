package authz

import "github.com/noah-isme/thesis-hub-api/internal/models"

// Action names a capability a role may exercise.
type Action string

const (
	ActionManageRoles      Action = "manage_roles"
	ActionManagePrincipals Action = "manage_principals"
	ActionManageSemesters  Action = "manage_semesters"
	ActionManageTopics     Action = "manage_topics"
	ActionReviewTopics     Action = "review_topics"
	ActionManageGroups     Action = "manage_groups"
	ActionSubmitReports    Action = "submit_reports"
	ActionReviewReports    Action = "review_reports"
	ActionGradeDefense     Action = "grade_defense"
	ActionViewAudit        Action = "view_audit"
)

type roleSpec struct {
	systemWide bool
	actions    map[Action]struct{}
}

func actionSet(actions ...Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// registry is the process-wide role table. Initialized once, read-only
// thereafter; changing it requires redeployment.
var registry = map[models.RoleName]roleSpec{
	models.RoleAdmin: {
		systemWide: true,
		actions: actionSet(
			ActionManageRoles, ActionManagePrincipals, ActionManageSemesters,
			ActionManageTopics, ActionReviewTopics, ActionManageGroups,
			ActionReviewReports, ActionViewAudit,
		),
	},
	models.RoleAcademicOfficer: {
		systemWide: true,
		actions: actionSet(
			ActionManageRoles, ActionManageSemesters, ActionManageTopics,
			ActionReviewTopics, ActionManageGroups, ActionViewAudit,
		),
	},
	models.RoleMentor: {
		actions: actionSet(ActionManageTopics, ActionManageGroups, ActionReviewReports),
	},
	models.RoleStudent: {
		actions: actionSet(ActionSubmitReports),
	},
	models.RoleCouncilMember: {
		actions: actionSet(ActionGradeDefense, ActionReviewTopics),
	},
}

// Known reports whether the role name exists in the registry.
func Known(name models.RoleName) bool {
	_, ok := registry[name]
	return ok
}

// IsSystemWide reports whether the role is valid across all semesters.
// Unknown role names report false so that evaluation denies by default.
func IsSystemWide(name models.RoleName) bool {
	return registry[name].systemWide
}

// IsProtected reports whether principals holding the role may not be
// cascade-deleted. A role is protected when it is system-wide and may manage
// roles, which covers the admin-equivalent set.
func IsProtected(name models.RoleName) bool {
	spec, ok := registry[name]
	if !ok || !spec.systemWide {
		return false
	}
	_, ok = spec.actions[ActionManageRoles]
	return ok
}

// Permits reports whether the role may perform the action. Unknown roles
// permit nothing.
func Permits(name models.RoleName, action Action) bool {
	spec, ok := registry[name]
	if !ok {
		return false
	}
	_, ok = spec.actions[action]
	return ok
}

// PermittedActions returns the action set of a role. Unknown roles yield nil.
func PermittedActions(name models.RoleName) []Action {
	spec, ok := registry[name]
	if !ok {
		return nil
	}
	actions := make([]Action, 0, len(spec.actions))
	for a := range spec.actions {
		actions = append(actions, a)
	}
	return actions
}

// RolesFor returns every role permitted to perform the action. Handlers use
// this to derive required-role sets from a single action constant instead of
// listing role strings at each call site.
func RolesFor(action Action) RoleSet {
	set := make(RoleSet)
	for name, spec := range registry {
		if _, ok := spec.actions[action]; ok {
			set[name] = struct{}{}
		}
	}
	return set
}

// RoleSet is a set of role names required for an operation.
type RoleSet map[models.RoleName]struct{}

// Roles builds a RoleSet from role names.
func Roles(names ...models.RoleName) RoleSet {
	set := make(RoleSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Contains reports set membership.
func (s RoleSet) Contains(name models.RoleName) bool {
	_, ok := s[name]
	return ok
}
