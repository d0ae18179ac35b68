package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/metrics"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
	"github.com/treehousetherapy/curelia-health/v1/store"
)

// resourceDeps bundles the collaborators every resource service shares:
// the policy evaluator decides, the repository reads and writes through
// the soft-delete filter, the ledger records what happened.
type resourceDeps struct {
	repo   *store.Repository
	policy *policy.Evaluator
	ledger *audit.Ledger
}

// authorize runs the policy check and converts a denial into
// policy.ErrForbidden. The evaluator has already written the
// access-denied ledger entry by the time this returns.
func (d resourceDeps) authorize(ctx context.Context, actor *models.User, action models.Action, resourceType string, resource models.ProtectedResource) (policy.AccessDecision, error) {
	decision := d.policy.Authorize(ctx, actor, action, resourceType, resource)
	if !decision.Allowed {
		return decision, policy.ErrForbidden
	}
	return decision, nil
}

// recordAccess writes a PHI access entry for a successful read. A
// failed ledger write on a read path is logged and counted but does not
// fail the read itself.
func (d resourceDeps) recordAccess(ctx context.Context, actor *models.User, resourceType string, resourceID *uuid.UUID, description string) {
	entry := audit.Entry{
		Action:       models.AuditActionAccess,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Description:  description,
	}
	if actor != nil {
		id := actor.ID
		entry.ActorID = &id
	}
	if _, err := d.ledger.Record(ctx, entry); err != nil {
		slog.Error("Failed to record access entry", "resourceType", resourceType, "error", err)
	}
}

// recordChange writes the ledger entry for a committed write. The
// returned error is the secondary audit-write error; the write itself
// has already succeeded.
func (d resourceDeps) recordChange(ctx context.Context, actor *models.User, action models.AuditAction, resource models.ProtectedResource, description string, changedFields []string) error {
	entry := audit.Entry{
		Action:       action,
		ResourceType: resource.ResourceType(),
		Description:  description,
	}
	id := resource.ResourceID()
	entry.ResourceID = &id
	if actor != nil {
		aid := actor.ID
		entry.ActorID = &aid
	}
	if len(changedFields) > 0 {
		sort.Strings(changedFields)
		entry.Metadata = map[string]interface{}{"changed_fields": changedFields}
	}
	_, err := d.ledger.Record(ctx, entry)
	return err
}

// recordFieldDenial writes the access_denied entry for an update that
// touches fields the actor's role may not change on their own record.
func (d resourceDeps) recordFieldDenial(ctx context.Context, actor *models.User, resourceType string, resourceID uuid.UUID, fields []string) {
	sort.Strings(fields)
	entry := audit.Entry{
		Action:       models.AuditActionAccessDenied,
		ResourceType: resourceType,
		Description:  fmt.Sprintf("Denied update on %s: restricted fields", resourceType),
		Metadata: map[string]interface{}{
			"attempted_action":  string(models.ActionUpdate),
			"reason":            string(policy.ReasonRoleInsufficient),
			"restricted_fields": fields,
		},
	}
	id := resourceID
	entry.ResourceID = &id
	if actor != nil {
		aid := actor.ID
		entry.ActorID = &aid
	}
	if _, err := d.ledger.Record(ctx, entry); err != nil {
		slog.Error("Failed to record access denial", "resourceType", resourceType, "error", err)
	}
	metrics.AccessDenialsTotal.WithLabelValues(string(policy.ReasonRoleInsufficient)).Inc()
}

func describeOp(verb, resourceType string, id uuid.UUID) string {
	return fmt.Sprintf("%s %s %s", verb, resourceType, id)
}
