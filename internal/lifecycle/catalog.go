package lifecycle

import "sort"

// EntityType names a table known to the entity graph catalog.
type EntityType string

const (
	EntityPrincipal         EntityType = "principal"
	EntitySemester          EntityType = "semester"
	EntityTopic             EntityType = "topic"
	EntityStudent           EntityType = "student"
	EntityRoleAssignment    EntityType = "role_assignment"
	EntityTopicRegistration EntityType = "topic_registration"
	EntityGroup             EntityType = "group"
	EntityGroupMember       EntityType = "group_member"
	EntityGroupMentor       EntityType = "group_mentor"
	EntityCouncil           EntityType = "council"
	EntityCouncilMember     EntityType = "council_member"
	EntityProgressReport    EntityType = "progress_report"
	EntityDocument          EntityType = "document"
	EntitySystemLog         EntityType = "system_log"
)

// CascadePolicy controls how the coordinator treats a relationship.
type CascadePolicy string

const (
	// PolicyCascade soft-deletes matching children with the parent.
	PolicyCascade CascadePolicy = "CASCADE"
	// PolicyBlock aborts the whole cascade while active children exist.
	PolicyBlock CascadePolicy = "BLOCK"
	// PolicyIgnore leaves children untouched.
	PolicyIgnore CascadePolicy = "IGNORE"
)

// Edge declares one child→parent relationship. SemesterColumn, when set,
// names the child table column a scoped cascade filters on directly; when
// empty, scope only applies through the parent chain.
type Edge struct {
	Entity         EntityType
	Parent         EntityType
	FKColumn       string
	Policy         CascadePolicy
	SemesterColumn string
}

var tables = map[EntityType]string{
	EntityPrincipal:         "principals",
	EntitySemester:          "semesters",
	EntityTopic:             "topics",
	EntityStudent:           "students",
	EntityRoleAssignment:    "role_assignments",
	EntityTopicRegistration: "topic_registrations",
	EntityGroup:             "groups",
	EntityGroupMember:       "group_members",
	EntityGroupMentor:       "group_mentors",
	EntityCouncil:           "councils",
	EntityCouncilMember:     "council_members",
	EntityProgressReport:    "progress_reports",
	EntityDocument:          "documents",
	EntitySystemLog:         "system_logs",
}

// Table returns the table backing an entity type.
func Table(entity EntityType) string {
	return tables[entity]
}

// catalog is the whole entity graph, declared once at startup and never
// mutated. Adding a dependent entity type means adding rows here; the
// coordinator walks this table generically.
var catalog = []Edge{
	{Entity: EntityRoleAssignment, Parent: EntityPrincipal, FKColumn: "principal_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityRoleAssignment, Parent: EntitySemester, FKColumn: "semester_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityStudent, Parent: EntityPrincipal, FKColumn: "principal_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityStudent, Parent: EntitySemester, FKColumn: "semester_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityTopic, Parent: EntityPrincipal, FKColumn: "created_by", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityTopic, Parent: EntitySemester, FKColumn: "semester_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityTopicRegistration, Parent: EntityTopic, FKColumn: "topic_id", Policy: PolicyBlock, SemesterColumn: "semester_id"},
	{Entity: EntityGroup, Parent: EntitySemester, FKColumn: "semester_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityTopicRegistration, Parent: EntityGroup, FKColumn: "group_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityGroupMember, Parent: EntityGroup, FKColumn: "group_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityGroupMember, Parent: EntityPrincipal, FKColumn: "principal_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityGroupMentor, Parent: EntityGroup, FKColumn: "group_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityGroupMentor, Parent: EntityPrincipal, FKColumn: "principal_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityCouncil, Parent: EntitySemester, FKColumn: "semester_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityCouncilMember, Parent: EntityCouncil, FKColumn: "council_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityCouncilMember, Parent: EntityPrincipal, FKColumn: "principal_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityProgressReport, Parent: EntityGroup, FKColumn: "group_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityProgressReport, Parent: EntityPrincipal, FKColumn: "submitted_by", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityDocument, Parent: EntityTopic, FKColumn: "topic_id", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntityDocument, Parent: EntityPrincipal, FKColumn: "uploaded_by", Policy: PolicyCascade, SemesterColumn: "semester_id"},
	{Entity: EntitySystemLog, Parent: EntityPrincipal, FKColumn: "actor_id", Policy: PolicyIgnore},
}

// rootTypes are the entity types a cascade may start from.
var rootTypes = map[EntityType]struct{}{
	EntityPrincipal: {},
	EntitySemester:  {},
	EntityTopic:     {},
}

// IsRoot reports whether cascades may start from the entity type.
func IsRoot(entity EntityType) bool {
	_, ok := rootTypes[entity]
	return ok
}

// Catalog returns the declared edge table.
func Catalog() []Edge {
	return catalog
}

// ChildEdges returns the edges whose parent is the given entity type.
func ChildEdges(parent EntityType) []Edge {
	var edges []Edge
	for _, e := range catalog {
		if e.Parent == parent {
			edges = append(edges, e)
		}
	}
	return edges
}

// ParentEdges returns every edge whose child is the given entity type. The
// coordinator uses these as restore guards: a row only comes back when all of
// its parents are themselves non-deleted.
func ParentEdges(entity EntityType) []Edge {
	var edges []Edge
	for _, e := range catalog {
		if e.Entity == entity {
			edges = append(edges, e)
		}
	}
	return edges
}

// Path is a chain of edges leading away from a root: the first edge's parent
// is the root and each subsequent edge hangs off the previous edge's child.
// The last edge identifies the rows a traversal step touches.
type Path []Edge

// Leaf returns the terminal edge of the path.
func (p Path) Leaf() Edge {
	return p[len(p)-1]
}

// PathsFrom enumerates every path reachable from the root, deepest first so
// that children are always processed before the entities that own them.
// Traversal never descends through BLOCK or IGNORE edges: BLOCK edges
// terminate a path (they are checked, not followed) and IGNORE edges are
// excluded entirely.
func PathsFrom(root EntityType) []Path {
	var paths []Path
	var walk func(prefix Path, from EntityType)
	walk = func(prefix Path, from EntityType) {
		for _, e := range ChildEdges(from) {
			if e.Policy == PolicyIgnore {
				continue
			}
			if onPath(prefix, e.Entity) {
				continue
			}
			next := make(Path, len(prefix), len(prefix)+1)
			copy(next, prefix)
			next = append(next, e)
			paths = append(paths, next)
			if e.Policy == PolicyCascade {
				walk(next, e.Entity)
			}
		}
	}
	walk(nil, root)

	sort.SliceStable(paths, func(i, j int) bool {
		return len(paths[i]) > len(paths[j])
	})
	return paths
}

func onPath(prefix Path, entity EntityType) bool {
	for _, e := range prefix {
		if e.Entity == entity || e.Parent == entity {
			return true
		}
	}
	return false
}
