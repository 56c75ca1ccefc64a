package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/preview"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNameRequired = errors.New("name is required")
	ErrReaderNil    = errors.New("reader is nil")

	// ErrImmutableFile is returned when an update would point a persisted
	// document at a different stored file. Stored files never change;
	// corrections go through Replace.
	ErrImmutableFile = errors.New("stored file is immutable")

	// ErrUnsavedDocument is returned when an operation requires a persisted
	// document but was handed a draft.
	ErrUnsavedDocument = errors.New("document is not stored")

	// ErrNoPreviewAvailable is returned when a preview is requested for a
	// document that has none.
	ErrNoPreviewAvailable = errors.New("document has no preview")
)

// timeNow is stubbed in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

const pdfMIME = "application/pdf"

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload uploads the content to object storage, saves metadata to DB, and rolls back storage if DB save fails.
	// - originalFilename is used only to extract extension; stored filename will be UUID + original extension.
	// - typeSlug selects the document type; an unknown slug fails with repository.ErrNotFound.
	// - content is optional extracted text kept alongside the file.
	// The content type is detected from the bytes, never taken from the caller.
	Upload(ctx context.Context, r io.Reader, originalFilename, name, typeSlug, content string, size int64) (*model.Document, error)

	// List returns documents using limit/offset and a total count, newest
	// first. A non-empty typeSlug restricts the listing to that type.
	List(ctx context.Context, limit, offset int, typeSlug string) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Update persists metadata changes: name, type, content. The stored
	// file is immutable; a differing non-empty FileKey fails with
	// ErrImmutableFile. An empty TypeID or FileKey keeps the stored value,
	// a nil Content keeps the stored text. A missing preview for a stored
	// PDF is backfilled here, best effort.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Replace stores new file content as a new document version that
	// supersedes doc. Name, type and text carry over; the preview is
	// regenerated from the new content. doc itself is never modified.
	Replace(ctx context.Context, doc *model.Document, r io.Reader, originalFilename string, size int64) (*model.Document, error)

	// VersionChain returns every version of the chain containing the given
	// document, oldest first.
	VersionChain(ctx context.Context, id string) ([]model.Document, error)

	// PresignDownload returns a time-limited URL for the original file.
	PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error)

	// PresignPreview returns a time-limited URL for the preview image, or
	// ErrNoPreviewAvailable when the document has none.
	PresignPreview(ctx context.Context, id string, expiry time.Duration) (string, error)

	// Delete removes the document record and afterwards its stored objects.
	Delete(ctx context.Context, id string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store    storage.Storage
	docs     repository.DocumentRepository
	types    repository.DocumentTypeRepository
	preview  preview.Generator
	keys     storage.KeyBuilder
	render   bool
	maxPages int
	log      *log.Logger
}

// NewDocumentService constructs a new DocumentService. renderPreview gates
// all preview generation; previewMaxPages is handed to the generator.
func NewDocumentService(
	store storage.Storage,
	docs repository.DocumentRepository,
	types repository.DocumentTypeRepository,
	gen preview.Generator,
	keys storage.KeyBuilder,
	renderPreview bool,
	previewMaxPages int,
	logger *log.Logger,
) DocumentService {
	return &documentService{
		store:    store,
		docs:     docs,
		types:    types,
		preview:  gen,
		keys:     keys,
		render:   renderPreview,
		maxPages: previewMaxPages,
		log:      logger,
	}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename, name, typeSlug, content string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	dt, err := s.types.FindBySlug(ctx, typeSlug)
	if err != nil {
		return nil, fmt.Errorf("resolve document type %q: %w", typeSlug, err)
	}

	doc := &model.Document{
		ID:     uuid.New().String(),
		Name:   name,
		TypeID: dt.ID,
	}
	if content != "" {
		doc.Content = &content
	}
	return s.saveNew(ctx, doc, r, originalFilename, size)
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int, typeSlug string) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	pq := repository.PageQuery{Limit: limit, Offset: offset}
	if typeSlug != "" {
		dt, err := s.types.FindBySlug(ctx, typeSlug)
		if err != nil {
			return nil, fmt.Errorf("resolve document type %q: %w", typeSlug, err)
		}
		pq.TypeID = dt.ID
	}

	res, err := s.docs.List(ctx, pq)
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.docs.FindByID(ctx, id)
}

// Update validates the change against a snapshot of the persisted state and
// persists the mutable fields only.
func (s *documentService) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if doc == nil || doc.ID == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, ErrNameRequired
	}

	prior, err := s.docs.FindByID(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", doc.ID, err)
	}
	if prior.FileKey != "" && doc.FileKey != "" && doc.FileKey != prior.FileKey {
		return nil, fmt.Errorf("%w: document %s", ErrImmutableFile, doc.ID)
	}
	if doc.TypeID == "" {
		doc.TypeID = prior.TypeID
	}
	if doc.Content == nil {
		doc.Content = prior.Content
	}

	doc.PreviewKey = prior.PreviewKey
	if prior.FileKey != "" && !prior.HasPreview() {
		if key := s.backfillPreview(ctx, prior); key != "" {
			doc.PreviewKey = &key
		}
	}

	doc.CreatedAt = prior.CreatedAt
	doc.Touch(timeNow())
	return s.docs.Update(ctx, doc)
}

// Replace creates the successor version of a stored document.
func (s *documentService) Replace(ctx context.Context, doc *model.Document, r io.Reader, originalFilename string, size int64) (*model.Document, error) {
	if doc == nil || !doc.IsStored() {
		return nil, ErrUnsavedDocument
	}
	if r == nil {
		return nil, ErrReaderNil
	}

	prior, err := s.docs.FindByID(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", doc.ID, err)
	}

	next := &model.Document{
		ID:         uuid.New().String(),
		Name:       prior.Name,
		TypeID:     prior.TypeID,
		Content:    prior.Content,
		ReplacesID: &prior.ID,
	}
	stored, err := s.saveNew(ctx, next, r, originalFilename, size)
	if err != nil {
		s.log.Error("replace failed", "document_id", prior.ID, "err", err)
		return nil, err
	}
	return stored, nil
}

func (s *documentService) VersionChain(ctx context.Context, id string) ([]model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.docs.FindChain(ctx, id)
}

func (s *documentService) PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error) {
	if id == "" {
		return "", ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, doc.FileKey, expiry)
}

func (s *documentService) PresignPreview(ctx context.Context, id string, expiry time.Duration) (string, error) {
	if id == "" {
		return "", ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !doc.HasPreview() {
		return "", ErrNoPreviewAvailable
	}
	return s.store.PresignGet(ctx, *doc.PreviewKey, expiry)
}

// Delete removes the record first, then the stored objects. Delete hooks and
// referential checks run on the record; once it is gone the object removal
// is best effort. An orphaned object is recoverable, a dangling row is not.
func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, doc.FileKey); err != nil {
		s.log.Warn("delete stored file failed", "document_id", id, "key", doc.FileKey, "err", err)
	}
	if doc.HasPreview() {
		if err := s.store.Delete(ctx, *doc.PreviewKey); err != nil {
			s.log.Warn("delete preview failed", "document_id", id, "key", *doc.PreviewKey, "err", err)
		}
	}
	return nil
}

// saveNew runs the save protocol for new file content: buffer the bytes,
// detect the content type, store the object, render the preview when
// enabled, insert the row. Stored objects are removed again when the insert
// fails so no partial state survives.
func (s *documentService) saveNew(ctx context.Context, doc *model.Document, r io.Reader, originalFilename string, size int64) (*model.Document, error) {
	data, err := readAll(r, size)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	mt := mimetype.Detect(data)
	ext := filepath.Ext(originalFilename)
	if ext == "" {
		ext = mt.Extension()
	}

	// Generate filename using UUID + extension
	key := s.keys.DocumentKey(uuid.New().String(), ext)

	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: mt.String(),
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc.FileKey = objInfo.Key
	doc.FileSize = objInfo.Size
	doc.ContentType = mt.String()
	doc.Timestamps = model.NewTimestamps(timeNow())

	if previewKey := s.renderPreview(ctx, doc.ID, data, mt); previewKey != "" {
		doc.PreviewKey = &previewKey
	}

	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		s.discardObjects(ctx, doc)
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// renderPreview generates and stores the preview image for PDF content.
// Failures are logged and swallowed; the document saves without a preview.
// The returned key is empty when nothing was stored.
func (s *documentService) renderPreview(ctx context.Context, docID string, data []byte, mt *mimetype.MIME) string {
	if !s.render || !mt.Is(pdfMIME) {
		return ""
	}
	img, err := s.preview.GeneratePDFPreview(bytes.NewReader(data), s.maxPages)
	if err != nil {
		s.log.Warn("preview generation failed", "document_id", docID, "err", err)
		return ""
	}
	key := s.keys.PreviewKey(docID)
	if _, err := s.store.Put(ctx, key, bytes.NewReader(img), storage.PutObjectOptions{
		Size:        int64(len(img)),
		ContentType: "image/jpeg",
	}); err != nil {
		s.log.Warn("preview upload failed", "document_id", docID, "key", key, "err", err)
		return ""
	}
	return key
}

// backfillPreview renders the missing preview for an already stored PDF.
// Best effort like the save pipeline; an empty key means nothing changed.
func (s *documentService) backfillPreview(ctx context.Context, doc *model.Document) string {
	if !s.render || doc.ContentType != pdfMIME {
		return ""
	}
	rc, _, err := s.store.Get(ctx, doc.FileKey)
	if err != nil {
		s.log.Warn("preview backfill fetch failed", "document_id", doc.ID, "key", doc.FileKey, "err", err)
		return ""
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		s.log.Warn("preview backfill read failed", "document_id", doc.ID, "err", err)
		return ""
	}
	return s.renderPreview(ctx, doc.ID, data, mimetype.Detect(data))
}

// discardObjects removes the objects stored for doc, compensating a failed
// insert. Failures are logged; the insert error wins.
func (s *documentService) discardObjects(ctx context.Context, doc *model.Document) {
	if err := s.store.Delete(ctx, doc.FileKey); err != nil {
		s.log.Error("rollback delete failed", "key", doc.FileKey, "err", err)
	}
	if doc.HasPreview() {
		if err := s.store.Delete(ctx, *doc.PreviewKey); err != nil {
			s.log.Error("rollback delete failed", "key", *doc.PreviewKey, "err", err)
		}
	}
}

// readAll buffers the whole source, preallocating when the size is known.
func readAll(r io.Reader, size int64) ([]byte, error) {
	if size > 0 {
		buf := bytes.NewBuffer(make([]byte, 0, size))
		if _, err := buf.ReadFrom(r); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return io.ReadAll(r)
}
