package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
	"github.com/treehousetherapy/curelia-health/v1/store"
)

// DocumentService handles document metadata operations. File bytes live
// in object storage; only the reference is managed here.
type DocumentService struct {
	resourceDeps
}

// NewDocumentService creates a new document service
func NewDocumentService(repo *store.Repository, evaluator *policy.Evaluator, ledger *audit.Ledger) *DocumentService {
	return &DocumentService{resourceDeps{repo: repo, policy: evaluator, ledger: ledger}}
}

// CreateDocument records an uploaded document
func (s *DocumentService) CreateDocument(ctx context.Context, actor *models.User, doc *models.Document) error {
	if _, err := s.authorize(ctx, actor, models.ActionCreate, models.ResourceTypeDocument, nil); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, doc, actor); err != nil {
		return err
	}
	return s.recordChange(ctx, actor, models.AuditActionCreate, doc,
		describeOp("Created", models.ResourceTypeDocument, doc.ID), nil)
}

// GetDocument loads one document visible to the actor
func (s *DocumentService) GetDocument(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := s.repo.Get(ctx, &doc, id, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeDocument, &doc); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeDocument, &id,
		describeOp("Accessed", models.ResourceTypeDocument, id))
	return &doc, nil
}

// ListDocuments returns the documents the actor's scope allows
func (s *DocumentService) ListDocuments(ctx context.Context, actor *models.User) ([]models.Document, error) {
	decision, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeDocument, nil)
	if err != nil {
		return nil, err
	}
	var docs []models.Document
	if err := s.repo.Find(ctx, &docs, store.ReadOptions{Scope: decision.Scope}); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeDocument, nil, "Listed documents")
	return docs, nil
}

// UpdateDocument applies the provided fields to a document
func (s *DocumentService) UpdateDocument(ctx context.Context, actor *models.User, id uuid.UUID, req *models.UpdateDocumentRequest) (*models.Document, error) {
	var doc models.Document
	if err := s.repo.Get(ctx, &doc, id, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionUpdate, models.ResourceTypeDocument, &doc); err != nil {
		return nil, err
	}

	changed := applyDocumentUpdate(&doc, req)
	if len(changed) == 0 {
		return &doc, nil
	}
	if err := s.repo.Save(ctx, &doc, actor); err != nil {
		return nil, err
	}
	if err := s.recordChange(ctx, actor, models.AuditActionUpdate, &doc,
		describeOp("Updated", models.ResourceTypeDocument, id), changed); err != nil {
		return &doc, err
	}
	return &doc, nil
}

// DeleteDocument soft-deletes a document (administrator only)
func (s *DocumentService) DeleteDocument(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, &models.Document{BaseModel: models.BaseModel{ID: id}}, actor)
}

// RestoreDocument clears the soft-delete flag (administrator only)
func (s *DocumentService) RestoreDocument(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.Restore(ctx, &models.Document{BaseModel: models.BaseModel{ID: id}}, actor)
}

func applyDocumentUpdate(d *models.Document, req *models.UpdateDocumentRequest) []string {
	var changed []string
	if req.DocumentType != nil && *req.DocumentType != d.DocumentType {
		d.DocumentType = *req.DocumentType
		changed = append(changed, "document_type")
	}
	if req.FileName != nil && *req.FileName != d.FileName {
		d.FileName = *req.FileName
		changed = append(changed, "file_name")
	}
	if req.ContentType != nil && *req.ContentType != d.ContentType {
		d.ContentType = *req.ContentType
		changed = append(changed, "content_type")
	}
	if req.Status != nil && *req.Status != d.Status {
		d.Status = *req.Status
		changed = append(changed, "status")
	}
	return changed
}
