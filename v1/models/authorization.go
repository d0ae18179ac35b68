package models

// Action classifies what an actor is attempting against a resource.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionRestore Action = "restore"
)

// AccessScope bounds which rows of a resource type a grant covers.
type AccessScope int

const (
	// ScopeNone denies the action entirely.
	ScopeNone AccessScope = iota
	// ScopeOwn limits the action to records owned by the actor.
	ScopeOwn
	// ScopeAssigned limits the action to records linked to the actor
	// through an assignment row or a logged shift.
	ScopeAssigned
	// ScopeAll places no row-level restriction on the action.
	ScopeAll
)

// RoleGrants is the capability table consumed by the policy evaluator.
// It is the single source of truth for role-based authorization:
//
//	admin      create/read/update/delete/restore, all rows
//	staff      create/read/update on all rows, no delete
//	caregiver  read limited to assigned resources, update own records
//	client     read own record only
//	family     read own record only
//
// Destructive operations (delete, restore) are administrator-only
// regardless of ownership.
var RoleGrants = map[Role]map[Action]AccessScope{
	RoleAdmin: {
		ActionCreate:  ScopeAll,
		ActionRead:    ScopeAll,
		ActionUpdate:  ScopeAll,
		ActionDelete:  ScopeAll,
		ActionRestore: ScopeAll,
	},
	RoleStaff: {
		ActionCreate:  ScopeAll,
		ActionRead:    ScopeAll,
		ActionUpdate:  ScopeAll,
		ActionDelete:  ScopeNone,
		ActionRestore: ScopeNone,
	},
	RoleCaregiver: {
		ActionCreate:  ScopeNone,
		ActionRead:    ScopeAssigned,
		ActionUpdate:  ScopeOwn,
		ActionDelete:  ScopeNone,
		ActionRestore: ScopeNone,
	},
	RoleClient: {
		ActionCreate:  ScopeNone,
		ActionRead:    ScopeOwn,
		ActionUpdate:  ScopeNone,
		ActionDelete:  ScopeNone,
		ActionRestore: ScopeNone,
	},
	RoleFamily: {
		ActionCreate:  ScopeNone,
		ActionRead:    ScopeOwn,
		ActionUpdate:  ScopeNone,
		ActionDelete:  ScopeNone,
		ActionRestore: ScopeNone,
	},
}

// Grant returns the access scope the role holds for an action.
// Unknown roles and unknown actions resolve to ScopeNone (fail closed).
func (r Role) Grant(action Action) AccessScope {
	grants, exists := RoleGrants[r]
	if !exists {
		return ScopeNone
	}
	scope, exists := grants[action]
	if !exists {
		return ScopeNone
	}
	return scope
}
