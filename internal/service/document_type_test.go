package service

import (
	"context"
	"testing"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	repoMocks "docvault/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDocumentTypeService_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("derives the slug from the name", func(t *testing.T) {
		stubNow(t, now)
		mRepo := new(repoMocks.MockDocumentTypeRepository)
		svc := NewDocumentTypeService(mRepo)

		mRepo.On("Create", ctx, mock.MatchedBy(func(dt *model.DocumentType) bool {
			return dt.ID != "" &&
				dt.Name == "Delivery Note" &&
				dt.Slug == "delivery-note" &&
				dt.CreatedAt.Equal(now) &&
				dt.UpdatedAt.Equal(now)
		})).Return(&model.DocumentType{ID: "type-1", Name: "Delivery Note", Slug: "delivery-note"}, nil)

		dt, err := svc.Create(ctx, "Delivery Note")
		assert.NoError(t, err)
		assert.Equal(t, "delivery-note", dt.Slug)
		mRepo.AssertExpectations(t)
	})

	t.Run("empty name", func(t *testing.T) {
		svc := NewDocumentTypeService(nil)

		_, err := svc.Create(ctx, "  ")
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("duplicate name", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentTypeRepository)
		svc := NewDocumentTypeService(mRepo)

		mRepo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicateKey)

		_, err := svc.Create(ctx, "Invoice")
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	})
}

func TestDocumentTypeService_List(t *testing.T) {
	ctx := context.Background()

	mRepo := new(repoMocks.MockDocumentTypeRepository)
	svc := NewDocumentTypeService(mRepo)

	mRepo.On("List", ctx).Return([]model.DocumentType{
		{ID: "type-2", Name: "Delivery Note", Slug: "delivery-note"},
		{ID: "type-1", Name: "Invoice", Slug: "invoice"},
	}, nil)

	types, err := svc.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, types, 2)
	assert.Equal(t, "delivery-note", types[0].Slug)
}

func TestDocumentTypeService_GetBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentTypeRepository)
		svc := NewDocumentTypeService(mRepo)

		mRepo.On("FindBySlug", ctx, "invoice").
			Return(&model.DocumentType{ID: "type-1", Name: "Invoice", Slug: "invoice"}, nil)

		dt, err := svc.GetBySlug(ctx, "invoice")
		assert.NoError(t, err)
		assert.Equal(t, "Invoice", dt.Name)
	})

	t.Run("empty slug", func(t *testing.T) {
		svc := NewDocumentTypeService(nil)

		_, err := svc.GetBySlug(ctx, "")
		assert.ErrorIs(t, err, ErrSlugRequired)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentTypeRepository)
		svc := NewDocumentTypeService(mRepo)

		mRepo.On("FindBySlug", ctx, "nope").Return(nil, repository.ErrNotFound)

		_, err := svc.GetBySlug(ctx, "nope")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDocumentTypeService_Rename(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("keeps the slug", func(t *testing.T) {
		stubNow(t, now)
		mRepo := new(repoMocks.MockDocumentTypeRepository)
		svc := NewDocumentTypeService(mRepo)

		mRepo.On("Update", ctx, mock.MatchedBy(func(dt *model.DocumentType) bool {
			return dt.Slug == "invoice" &&
				dt.Name == "Customer Invoice" &&
				dt.UpdatedAt.Equal(now)
		})).Return(&model.DocumentType{ID: "type-1", Name: "Customer Invoice", Slug: "invoice"}, nil)

		dt, err := svc.Rename(ctx, "invoice", "Customer Invoice")
		assert.NoError(t, err)
		assert.Equal(t, "invoice", dt.Slug)
		assert.Equal(t, "Customer Invoice", dt.Name)
		mRepo.AssertExpectations(t)
	})

	t.Run("empty slug", func(t *testing.T) {
		svc := NewDocumentTypeService(nil)

		_, err := svc.Rename(ctx, "", "Customer Invoice")
		assert.ErrorIs(t, err, ErrSlugRequired)
	})

	t.Run("empty name", func(t *testing.T) {
		svc := NewDocumentTypeService(nil)

		_, err := svc.Rename(ctx, "invoice", " ")
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentTypeRepository)
		svc := NewDocumentTypeService(mRepo)

		mRepo.On("Update", ctx, mock.Anything).Return(nil, repository.ErrNotFound)

		_, err := svc.Rename(ctx, "nope", "Customer Invoice")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDocumentTypeService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentTypeRepository)
		svc := NewDocumentTypeService(mRepo)

		mRepo.On("Delete", ctx, "invoice").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "invoice"))
		mRepo.AssertExpectations(t)
	})

	t.Run("still referenced", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentTypeRepository)
		svc := NewDocumentTypeService(mRepo)

		mRepo.On("Delete", ctx, "invoice").Return(repository.ErrReferentialIntegrity)

		err := svc.Delete(ctx, "invoice")
		assert.ErrorIs(t, err, repository.ErrReferentialIntegrity)
	})

	t.Run("empty slug", func(t *testing.T) {
		svc := NewDocumentTypeService(nil)

		assert.ErrorIs(t, svc.Delete(ctx, ""), ErrSlugRequired)
	})
}
