package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRoots(t *testing.T) {
	assert.True(t, IsRoot(EntityPrincipal))
	assert.True(t, IsRoot(EntitySemester))
	assert.True(t, IsRoot(EntityTopic))
	assert.False(t, IsRoot(EntityGroup))
	assert.False(t, IsRoot(EntityDocument))
}

func TestCatalogTables(t *testing.T) {
	assert.Equal(t, "principals", Table(EntityPrincipal))
	assert.Equal(t, "topic_registrations", Table(EntityTopicRegistration))
	assert.Empty(t, Table(EntityType("bogus")))
}

func TestPathsFromDeepestFirst(t *testing.T) {
	paths := PathsFrom(EntitySemester)
	require.NotEmpty(t, paths)

	for i := 1; i < len(paths); i++ {
		assert.GreaterOrEqual(t, len(paths[i-1]), len(paths[i]),
			"paths must be ordered deepest first")
	}
}

func TestPathsFromNeverDescendThroughBlock(t *testing.T) {
	for _, root := range []EntityType{EntityPrincipal, EntitySemester, EntityTopic} {
		for _, p := range PathsFrom(root) {
			for i, e := range p {
				if e.Policy == PolicyBlock {
					assert.Equal(t, len(p)-1, i,
						"BLOCK edge must terminate its path (root %s)", root)
				}
			}
		}
	}
}

func TestPathsFromExcludeIgnore(t *testing.T) {
	for _, p := range PathsFrom(EntityPrincipal) {
		for _, e := range p {
			assert.NotEqual(t, PolicyIgnore, e.Policy)
			assert.NotEqual(t, EntitySystemLog, e.Entity,
				"system logs must never join a cascade")
		}
	}
}

func TestPathsFromTopicReachesRegistrationsAndDocuments(t *testing.T) {
	var entities []EntityType
	for _, p := range PathsFrom(EntityTopic) {
		entities = append(entities, p.Leaf().Entity)
	}
	assert.Contains(t, entities, EntityTopicRegistration)
	assert.Contains(t, entities, EntityDocument)
}

func TestPathsFromSemesterCoversScopedChildren(t *testing.T) {
	leaves := map[EntityType]bool{}
	for _, p := range PathsFrom(EntitySemester) {
		leaves[p.Leaf().Entity] = true
	}
	for _, want := range []EntityType{
		EntityRoleAssignment, EntityStudent, EntityTopic, EntityGroup,
		EntityGroupMember, EntityGroupMentor, EntityCouncil,
		EntityCouncilMember, EntityProgressReport, EntityDocument,
	} {
		assert.True(t, leaves[want], "expected a path ending at %s", want)
	}
}

func TestPathsFromCycleGuard(t *testing.T) {
	// The graph contains converging edges (group members hang off both groups
	// and principals); traversal must still terminate and never revisit an
	// entity within one path.
	for _, root := range []EntityType{EntityPrincipal, EntitySemester, EntityTopic} {
		for _, p := range PathsFrom(root) {
			seen := map[EntityType]bool{}
			for _, e := range p {
				assert.False(t, seen[e.Entity], "entity %s repeated on path from %s", e.Entity, root)
				seen[e.Entity] = true
			}
		}
	}
}

func TestParentEdgesForRestoreGuards(t *testing.T) {
	parents := ParentEdges(EntityGroupMember)
	require.Len(t, parents, 2)

	var parentTypes []EntityType
	for _, e := range parents {
		parentTypes = append(parentTypes, e.Parent)
	}
	assert.Contains(t, parentTypes, EntityGroup)
	assert.Contains(t, parentTypes, EntityPrincipal)
}
