package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/metrics"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a row does not exist or is hidden by the
// soft-delete filter.
var ErrNotFound = errors.New("record not found")

// ErrForbidden is returned when a non-administrator attempts a
// soft-delete or restore.
var ErrForbidden = errors.New("forbidden")

// ReadOptions controls how a read is filtered. The soft-delete predicate
// is applied unless IncludeDeleted is set explicitly; Scope is the
// row-level predicate handed out by the policy evaluator.
type ReadOptions struct {
	IncludeDeleted bool
	Scope          func(*gorm.DB) *gorm.DB
}

// Repository is the only read/write path over protected resources.
// Every read goes through the soft-delete filter; no other component
// touches the is_deleted flag.
type Repository struct {
	db     *gorm.DB
	ledger *audit.Ledger
}

// NewRepository creates a repository over the given database
func NewRepository(db *gorm.DB, ledger *audit.Ledger) *Repository {
	return &Repository{db: db, ledger: ledger}
}

// NotDeleted is the soft-delete predicate ANDed into every read query.
// Callers outside this package that need to see protected rows (the
// credential guard's user lookups, the evaluator's relationship
// subqueries) apply it through this scope instead of touching the flag.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

func (r *Repository) readQuery(ctx context.Context, opts ReadOptions) *gorm.DB {
	query := r.db.WithContext(ctx)
	if !opts.IncludeDeleted {
		query = query.Scopes(NotDeleted)
	}
	if opts.Scope != nil {
		query = query.Scopes(opts.Scope)
	}
	return query
}

// Find loads all rows visible under the options into dest.
func (r *Repository) Find(ctx context.Context, dest interface{}, opts ReadOptions, conds ...interface{}) error {
	if err := r.readQuery(ctx, opts).Find(dest, conds...).Error; err != nil {
		return fmt.Errorf("find failed: %w", err)
	}
	return nil
}

// Get loads one row by primary key. Rows hidden by the soft-delete
// filter or the policy scope report ErrNotFound.
func (r *Repository) Get(ctx context.Context, dest interface{}, id uuid.UUID, opts ReadOptions) error {
	err := r.readQuery(ctx, opts).First(dest, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}
	return nil
}

// Create inserts a resource, stamping the acting user into the
// created-by/updated-by columns.
func (r *Repository) Create(ctx context.Context, resource interface{}, actor *models.User) error {
	if actor != nil {
		if base := baseOf(resource); base != nil {
			id := actor.ID
			base.CreatedByID = &id
			base.UpdatedByID = &id
		}
	}
	if err := r.db.WithContext(ctx).Create(resource).Error; err != nil {
		return fmt.Errorf("create failed: %w", err)
	}
	return nil
}

// Save persists changes to an already-loaded resource, stamping the
// acting user as updater.
func (r *Repository) Save(ctx context.Context, resource interface{}, actor *models.User) error {
	if actor != nil {
		if base := baseOf(resource); base != nil {
			id := actor.ID
			base.UpdatedByID = &id
		}
	}
	if err := r.db.WithContext(ctx).Save(resource).Error; err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	return nil
}

// SoftDelete flags the resource deleted without removing the row.
// Administrator only, regardless of ownership. The audit entry is
// written after the flag change is durable; an audit-write failure is
// returned wrapped in audit.ErrWrite but does not undo the delete.
func (r *Repository) SoftDelete(ctx context.Context, resource models.ProtectedResource, actor *models.User) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrForbidden
	}

	actorID := actor.ID
	result := r.db.WithContext(ctx).Model(resource).
		Where("id = ?", resource.ResourceID()).
		Updates(map[string]interface{}{
			"is_deleted":    true,
			"updated_by_id": actorID,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("soft delete failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	metrics.SoftDeletesTotal.WithLabelValues(resource.ResourceType(), "delete").Inc()

	resourceID := resource.ResourceID()
	_, err := r.ledger.Record(ctx, audit.Entry{
		ActorID:      &actorID,
		Action:       models.AuditActionDelete,
		ResourceType: resource.ResourceType(),
		ResourceID:   &resourceID,
		Description:  fmt.Sprintf("Soft-deleted %s %s", resource.ResourceType(), resourceID),
	})
	return err
}

// Restore clears the soft-delete flag. Administrator only. Restoring a
// row that is not deleted is a no-op that still succeeds and is still
// audited, so the ledger shows who asked for it.
func (r *Repository) Restore(ctx context.Context, resource models.ProtectedResource, actor *models.User) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrForbidden
	}

	actorID := actor.ID
	result := r.db.WithContext(ctx).Model(resource).
		Where("id = ?", resource.ResourceID()).
		Updates(map[string]interface{}{
			"is_deleted":    false,
			"updated_by_id": actorID,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("restore failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	metrics.SoftDeletesTotal.WithLabelValues(resource.ResourceType(), "restore").Inc()

	resourceID := resource.ResourceID()
	_, err := r.ledger.Record(ctx, audit.Entry{
		ActorID:      &actorID,
		Action:       models.AuditActionRestore,
		ResourceType: resource.ResourceType(),
		ResourceID:   &resourceID,
		Description:  fmt.Sprintf("Restored %s %s", resource.ResourceType(), resourceID),
	})
	return err
}

// baseOf extracts the embedded BaseModel from a resource pointer.
func baseOf(resource interface{}) *models.BaseModel {
	if r, ok := resource.(interface{ Base() *models.BaseModel }); ok {
		return r.Base()
	}
	return nil
}
