package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/thesis-hub-api/internal/models"
)

func TestRegistryScopeClassification(t *testing.T) {
	assert.True(t, IsSystemWide(models.RoleAdmin))
	assert.True(t, IsSystemWide(models.RoleAcademicOfficer))
	assert.False(t, IsSystemWide(models.RoleMentor))
	assert.False(t, IsSystemWide(models.RoleStudent))
	assert.False(t, IsSystemWide(models.RoleCouncilMember))
	assert.False(t, IsSystemWide(models.RoleName("nonexistent")))
}

func TestRegistryProtectedRoles(t *testing.T) {
	assert.True(t, IsProtected(models.RoleAdmin))
	assert.True(t, IsProtected(models.RoleAcademicOfficer))
	assert.False(t, IsProtected(models.RoleMentor))
	assert.False(t, IsProtected(models.RoleName("nonexistent")))
}

func TestRegistryKnown(t *testing.T) {
	assert.True(t, Known(models.RoleStudent))
	assert.False(t, Known(models.RoleName("superuser")))
}

func TestRegistryPermits(t *testing.T) {
	assert.True(t, Permits(models.RoleAdmin, ActionManageRoles))
	assert.True(t, Permits(models.RoleStudent, ActionSubmitReports))
	assert.False(t, Permits(models.RoleStudent, ActionManageRoles))
	assert.False(t, Permits(models.RoleName("nonexistent"), ActionSubmitReports))
}

func TestRolesForAction(t *testing.T) {
	set := RolesFor(ActionGradeDefense)
	assert.True(t, set.Contains(models.RoleCouncilMember))
	assert.False(t, set.Contains(models.RoleStudent))

	// Every role with manage_roles must be system-wide; the protected set
	// depends on it.
	for name := range RolesFor(ActionManageRoles) {
		assert.True(t, IsSystemWide(name))
	}
}
