package policy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/metrics"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/store"
	"gorm.io/gorm"
)

// AccessDecision is the ephemeral result of an authorization check.
// Scope, when non-nil, is the row-level predicate list queries must
// apply so they never leak rows the actor cannot access.
type AccessDecision struct {
	Allowed bool
	Reason  ReasonCode
	Scope   func(*gorm.DB) *gorm.DB
}

// Evaluator is the single place role-based authorization happens.
// Handlers consult it uniformly instead of re-implementing role checks
// per resource type. Every denial is written to the audit ledger before
// the caller sees it.
type Evaluator struct {
	db     *gorm.DB
	ledger *audit.Ledger
}

// NewEvaluator creates an evaluator over the capability table in models
func NewEvaluator(db *gorm.DB, ledger *audit.Ledger) *Evaluator {
	return &Evaluator{db: db, ledger: ledger}
}

// Authorize decides whether actor may perform action against the given
// resource type. resource may be nil for list/create checks; when it is
// set, own/assigned grants are verified against that instance.
func (e *Evaluator) Authorize(ctx context.Context, actor *models.User, action models.Action, resourceType string, resource models.ProtectedResource) AccessDecision {
	if actor == nil {
		return e.deny(ctx, nil, action, resourceType, resource, ReasonRoleInsufficient)
	}

	scope := actor.Role.Grant(action)
	switch scope {
	case models.ScopeNone:
		return e.deny(ctx, actor, action, resourceType, resource, ReasonRoleInsufficient)

	case models.ScopeAll:
		return AccessDecision{Allowed: true}

	case models.ScopeOwn:
		if resource != nil && !e.owns(ctx, actor, resource) {
			return e.deny(ctx, actor, action, resourceType, resource, ReasonNotOwner)
		}
		return AccessDecision{Allowed: true, Scope: e.ownScope(actor, resourceType)}

	case models.ScopeAssigned:
		if resource != nil && !e.assigned(ctx, actor, resource) {
			return e.deny(ctx, actor, action, resourceType, resource, ReasonNotAssigned)
		}
		return AccessDecision{Allowed: true, Scope: e.assignedScope(actor, resourceType)}
	}

	return e.deny(ctx, actor, action, resourceType, resource, ReasonRoleInsufficient)
}

// deny records the denial before returning it. A failed ledger write is
// logged and counted but cannot turn a denial into an allow.
func (e *Evaluator) deny(ctx context.Context, actor *models.User, action models.Action, resourceType string, resource models.ProtectedResource, reason ReasonCode) AccessDecision {
	entry := audit.Entry{
		Action:       models.AuditActionAccessDenied,
		ResourceType: resourceType,
		Description:  fmt.Sprintf("Denied %s on %s", action, resourceType),
		Metadata: map[string]interface{}{
			"attempted_action": string(action),
			"reason":           string(reason),
		},
	}
	if actor != nil {
		id := actor.ID
		entry.ActorID = &id
	}
	if resource != nil {
		rid := resource.ResourceID()
		entry.ResourceID = &rid
	}

	if _, err := e.ledger.Record(ctx, entry); err != nil {
		slog.Error("Failed to record access denial", "resourceType", resourceType, "reason", reason, "error", err)
	}
	metrics.AccessDenialsTotal.WithLabelValues(string(reason)).Inc()

	return AccessDecision{Allowed: false, Reason: reason}
}

// owns verifies ownership of a single resource instance. Direct
// ownership is the OwnerUserID column; time logs and shifts resolve
// through the actor's caregiver profile, and family accounts resolve
// through their family_members link.
func (e *Evaluator) owns(ctx context.Context, actor *models.User, resource models.ProtectedResource) bool {
	if owner := resource.OwnerUserID(); owner != nil && *owner == actor.ID {
		return true
	}

	switch r := resource.(type) {
	case *models.TimeLog:
		return e.caregiverMatches(ctx, actor.ID, r.CaregiverID)
	case *models.Shift:
		return e.caregiverMatches(ctx, actor.ID, r.CaregiverID)
	case *models.Client:
		return actor.Role == models.RoleFamily && e.familyLinked(ctx, actor.ID, r.ID)
	case *models.CarePlan:
		return e.clientMatches(ctx, actor, r.ClientID)
	case *models.Document:
		if r.CaregiverID != nil && e.caregiverMatches(ctx, actor.ID, *r.CaregiverID) {
			return true
		}
		return false
	}
	return false
}

// assigned verifies the caregiver-to-resource relationship for a single
// instance: a direct care assignment, or being the caregiver on a
// logged shift.
func (e *Evaluator) assigned(ctx context.Context, actor *models.User, resource models.ProtectedResource) bool {
	caregiverIDs := e.caregiverIDs(actor.ID)

	switch r := resource.(type) {
	case *models.Client:
		var count int64
		e.db.WithContext(ctx).Model(&models.CareAssignment{}).
			Scopes(store.NotDeleted).
			Where("client_id = ? AND caregiver_id IN (?)", r.ID, caregiverIDs).
			Count(&count)
		if count > 0 {
			return true
		}
		e.db.WithContext(ctx).Model(&models.Shift{}).
			Scopes(store.NotDeleted).
			Where("client_id = ? AND caregiver_id IN (?)", r.ID, caregiverIDs).
			Count(&count)
		return count > 0
	case *models.Patient:
		var count int64
		e.db.WithContext(ctx).Model(&models.CareAssignment{}).
			Scopes(store.NotDeleted).
			Where("patient_id = ? AND caregiver_id IN (?)", r.ID, caregiverIDs).
			Count(&count)
		return count > 0
	case *models.Shift:
		return e.caregiverMatches(ctx, actor.ID, r.CaregiverID)
	case *models.TimeLog:
		return e.caregiverMatches(ctx, actor.ID, r.CaregiverID)
	case *models.Document:
		return r.CaregiverID != nil && e.caregiverMatches(ctx, actor.ID, *r.CaregiverID)
	case *models.Caregiver:
		return r.UserID == actor.ID
	case *models.CarePlan:
		return e.assigned(ctx, actor, &models.Client{BaseModel: models.BaseModel{ID: r.ClientID}})
	}
	return false
}

// ownScope builds the row filter for own-scope list queries.
func (e *Evaluator) ownScope(actor *models.User, resourceType string) func(*gorm.DB) *gorm.DB {
	actorID := actor.ID
	switch resourceType {
	case models.ResourceTypeUser:
		return func(db *gorm.DB) *gorm.DB { return db.Where("id = ?", actorID) }
	case models.ResourceTypePatient:
		return func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", actorID) }
	case models.ResourceTypeCaregiver:
		return func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", actorID) }
	case models.ResourceTypeClient:
		familyClients := e.familyClientIDs(actorID)
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("user_id = ? OR id IN (?)", actorID, familyClients)
		}
	case models.ResourceTypeCarePlan:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("client_id IN (?)", e.ownClientIDs(actorID))
		}
	case models.ResourceTypeShift:
		caregiverIDs := e.caregiverIDs(actorID)
		ownClients := e.ownClientIDs(actorID)
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("caregiver_id IN (?) OR client_id IN (?)", caregiverIDs, ownClients)
		}
	case models.ResourceTypeTimeLog:
		caregiverIDs := e.caregiverIDs(actorID)
		ownClients := e.ownClientIDs(actorID)
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("caregiver_id IN (?) OR client_id IN (?)", caregiverIDs, ownClients)
		}
	case models.ResourceTypeDocument:
		caregiverIDs := e.caregiverIDs(actorID)
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("owner_id = ? OR caregiver_id IN (?)", actorID, caregiverIDs)
		}
	}
	// Unknown resource types match nothing
	return func(db *gorm.DB) *gorm.DB { return db.Where("1 = 0") }
}

// assignedScope builds the row filter for a caregiver's list queries:
// rows reachable through a care assignment or a logged shift.
func (e *Evaluator) assignedScope(actor *models.User, resourceType string) func(*gorm.DB) *gorm.DB {
	actorID := actor.ID
	caregiverIDs := e.caregiverIDs(actorID)

	switch resourceType {
	case models.ResourceTypeClient:
		assignedClients := e.db.Model(&models.CareAssignment{}).Select("client_id").
			Scopes(store.NotDeleted).Where("caregiver_id IN (?)", caregiverIDs)
		shiftClients := e.db.Model(&models.Shift{}).Select("client_id").
			Scopes(store.NotDeleted).Where("caregiver_id IN (?)", caregiverIDs)
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("id IN (?) OR id IN (?)", assignedClients, shiftClients)
		}
	case models.ResourceTypePatient:
		assignedPatients := e.db.Model(&models.CareAssignment{}).Select("patient_id").
			Scopes(store.NotDeleted).
			Where("patient_id IS NOT NULL AND caregiver_id IN (?)", caregiverIDs)
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("id IN (?)", assignedPatients)
		}
	case models.ResourceTypeShift, models.ResourceTypeTimeLog:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("caregiver_id IN (?)", caregiverIDs)
		}
	case models.ResourceTypeDocument:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("owner_id = ? OR caregiver_id IN (?)", actorID, caregiverIDs)
		}
	case models.ResourceTypeCaregiver:
		return func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", actorID) }
	case models.ResourceTypeCarePlan:
		assignedClients := e.db.Model(&models.CareAssignment{}).Select("client_id").
			Scopes(store.NotDeleted).Where("caregiver_id IN (?)", caregiverIDs)
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("client_id IN (?)", assignedClients)
		}
	}
	return func(db *gorm.DB) *gorm.DB { return db.Where("1 = 0") }
}

// caregiverIDs returns a subquery selecting the caregiver profile ids
// belonging to a user account.
func (e *Evaluator) caregiverIDs(userID uuid.UUID) *gorm.DB {
	return e.db.Model(&models.Caregiver{}).Select("id").
		Scopes(store.NotDeleted).Where("user_id = ?", userID)
}

// ownClientIDs returns a subquery selecting client ids the user owns
// directly or through a family link.
func (e *Evaluator) ownClientIDs(userID uuid.UUID) *gorm.DB {
	familyClients := e.db.Model(&models.FamilyMember{}).Select("client_id").
		Scopes(store.NotDeleted).Where("user_id = ?", userID)
	return e.db.Model(&models.Client{}).Select("id").
		Scopes(store.NotDeleted).Where("user_id = ? OR id IN (?)", userID, familyClients)
}

// familyClientIDs returns a subquery selecting client ids linked to a
// family-member account.
func (e *Evaluator) familyClientIDs(userID uuid.UUID) *gorm.DB {
	return e.db.Model(&models.FamilyMember{}).Select("client_id").
		Scopes(store.NotDeleted).Where("user_id = ?", userID)
}

func (e *Evaluator) caregiverMatches(ctx context.Context, userID, caregiverID uuid.UUID) bool {
	var count int64
	e.db.WithContext(ctx).Model(&models.Caregiver{}).
		Scopes(store.NotDeleted).Where("id = ? AND user_id = ?", caregiverID, userID).
		Count(&count)
	return count > 0
}

func (e *Evaluator) clientMatches(ctx context.Context, actor *models.User, clientID uuid.UUID) bool {
	var count int64
	e.db.WithContext(ctx).Model(&models.Client{}).
		Scopes(store.NotDeleted).Where("id = ? AND user_id = ?", clientID, actor.ID).
		Count(&count)
	if count > 0 {
		return true
	}
	if actor.Role == models.RoleFamily {
		return e.familyLinked(ctx, actor.ID, clientID)
	}
	return false
}

func (e *Evaluator) familyLinked(ctx context.Context, userID, clientID uuid.UUID) bool {
	var count int64
	e.db.WithContext(ctx).Model(&models.FamilyMember{}).
		Scopes(store.NotDeleted).Where("user_id = ? AND client_id = ?", userID, clientID).
		Count(&count)
	return count > 0
}
