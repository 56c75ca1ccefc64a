package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/service"
)

// presignExpiry bounds how long download and preview links stay valid.
const presignExpiry = 15 * time.Minute

// parseDocumentID validates the :id route parameter.
func parseDocumentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// UploadDocument accepts a multipart form: file (required), name (required),
// type (required, a document type slug) and content (optional extracted
// text). The stored content type is detected from the file bytes.
//
// @Summary Upload a document
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param file formData file true "file content"
// @Param name formData string true "document name"
// @Param type formData string true "document type slug"
// @Param content formData string false "extracted text"
// @Success 201 {object} model.Document
// @Failure 400 {object} handler.errorPayload
// @Failure 404 {object} handler.errorPayload
// @Router /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		name := c.FormValue("name")
		if name == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
		}
		typeSlug := c.FormValue("type")
		if typeSlug == "" {
			return writeError(c, fiber.StatusBadRequest, "TYPE_REQUIRED", "type is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Upload(c.UserContext(), f, fh.Filename, name, typeSlug, c.FormValue("content"), fh.Size)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments pages through documents, newest first. Query parameters:
// limit, offset, type (a document type slug).
//
// @Summary List documents
// @Tags documents
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "page start" default(0)
// @Param type query string false "filter by document type slug"
// @Success 200 {object} service.DocumentListResult
// @Failure 400 {object} handler.errorPayload
// @Router /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset, c.Query("type"))
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument returns a single document by ID.
//
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} model.Document
// @Failure 404 {object} handler.errorPayload
// @Router /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseDocumentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

type updateDocumentRequest struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Content *string `json:"content"`
	FileKey string  `json:"file_key"`
}

// UpdateDocument changes document metadata: name, type, text content. The
// stored file is immutable; a request carrying a different file_key is
// answered with 409.
//
// @Summary Update document metadata
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "document id"
// @Param request body handler.updateDocumentRequest true "metadata changes"
// @Success 200 {object} model.Document
// @Failure 404 {object} handler.errorPayload
// @Failure 409 {object} handler.errorPayload
// @Router /documents/{id} [put]
func UpdateDocument(svc service.DocumentService, types service.DocumentTypeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseDocumentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req updateDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		doc := &model.Document{ID: id, Name: req.Name, Content: req.Content, FileKey: req.FileKey}
		if req.Type != "" {
			dt, err := types.GetBySlug(c.UserContext(), req.Type)
			if err != nil {
				return mapServiceError(c, err)
			}
			doc.TypeID = dt.ID
		}

		updated, err := svc.Update(c.UserContext(), doc)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(updated)
	}
}

// ReplaceDocument stores the uploaded file as the successor version of the
// document. Each document can be replaced exactly once; racing replacements
// lose with 409.
//
// @Summary Replace a document with a new version
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param id path string true "document id"
// @Param file formData file true "replacement file content"
// @Success 201 {object} model.Document
// @Failure 404 {object} handler.errorPayload
// @Failure 409 {object} handler.errorPayload
// @Failure 422 {object} handler.errorPayload
// @Router /documents/{id}/replace [post]
func ReplaceDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseDocumentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Replace(c.UserContext(), &model.Document{ID: id}, f, fh.Filename, fh.Size)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return writeError(c, fiber.StatusConflict, "ALREADY_REPLACED", "document already has a replacement")
			}
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// DocumentVersions returns the document's full version chain, oldest first.
//
// @Summary List a document's version chain
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} handler.errorPayload
// @Router /documents/{id}/versions [get]
func DocumentVersions(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseDocumentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		chain, err := svc.VersionChain(c.UserContext(), id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": chain})
	}
}

// DownloadDocument returns a time-limited URL for the original file.
//
// @Summary Presign a download URL
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} handler.errorPayload
// @Router /documents/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseDocumentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.PresignDownload(c.UserContext(), id, presignExpiry)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url, "expires_in": int(presignExpiry.Seconds())})
	}
}

// PreviewDocument returns a time-limited URL for the preview image.
//
// @Summary Presign a preview URL
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} handler.errorPayload
// @Router /documents/{id}/preview [get]
func PreviewDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseDocumentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.PresignPreview(c.UserContext(), id, presignExpiry)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url, "expires_in": int(presignExpiry.Seconds())})
	}
}

// DeleteDocument removes a document. Deletion is refused once the document
// has outlived its deletion window, and while a successor references it.
//
// @Summary Delete a document
// @Tags documents
// @Param id path string true "document id"
// @Success 204 "no content"
// @Failure 403 {object} handler.errorPayload
// @Failure 404 {object} handler.errorPayload
// @Failure 409 {object} handler.errorPayload
// @Router /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseDocumentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return mapServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
