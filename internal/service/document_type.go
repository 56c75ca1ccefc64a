package service

import (
	"context"
	"errors"
	"strings"

	"docvault/internal/model"
	"docvault/internal/repository"
)

var ErrSlugRequired = errors.New("slug is required")

// DocumentTypeService defines the use cases for handling document types.
type DocumentTypeService interface {
	// Create registers a new document type. The slug is derived from the
	// name here, exactly once; it never changes afterwards.
	Create(ctx context.Context, name string) (*model.DocumentType, error)

	// List returns all document types ordered by name.
	List(ctx context.Context) ([]model.DocumentType, error)

	// GetBySlug returns a document type by its slug.
	GetBySlug(ctx context.Context, slug string) (*model.DocumentType, error)

	// Rename changes the display name. The slug keeps its original value,
	// so stored references and URLs stay valid.
	Rename(ctx context.Context, slug, newName string) (*model.DocumentType, error)

	// Delete removes a document type. Refused with
	// repository.ErrReferentialIntegrity while documents reference it.
	Delete(ctx context.Context, slug string) error
}

type documentTypeService struct {
	repo repository.DocumentTypeRepository
}

// NewDocumentTypeService constructs a new DocumentTypeService.
func NewDocumentTypeService(repo repository.DocumentTypeRepository) DocumentTypeService {
	return &documentTypeService{repo: repo}
}

func (s *documentTypeService) Create(ctx context.Context, name string) (*model.DocumentType, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	return s.repo.Create(ctx, model.NewDocumentType(name, timeNow()))
}

func (s *documentTypeService) List(ctx context.Context) ([]model.DocumentType, error) {
	return s.repo.List(ctx)
}

func (s *documentTypeService) GetBySlug(ctx context.Context, slug string) (*model.DocumentType, error) {
	if slug == "" {
		return nil, ErrSlugRequired
	}
	return s.repo.FindBySlug(ctx, slug)
}

func (s *documentTypeService) Rename(ctx context.Context, slug, newName string) (*model.DocumentType, error) {
	if slug == "" {
		return nil, ErrSlugRequired
	}
	if strings.TrimSpace(newName) == "" {
		return nil, ErrNameRequired
	}

	dt := &model.DocumentType{Slug: slug, Name: newName}
	dt.Touch(timeNow())
	return s.repo.Update(ctx, dt)
}

func (s *documentTypeService) Delete(ctx context.Context, slug string) error {
	if slug == "" {
		return ErrSlugRequired
	}
	return s.repo.Delete(ctx, slug)
}
