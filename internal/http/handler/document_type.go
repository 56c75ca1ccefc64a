package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/service"
)

type documentTypeRequest struct {
	Name string `json:"name"`
}

// CreateDocumentType registers a new document type. The slug is derived
// from the name here and is immutable from then on.
//
// @Summary Create a document type
// @Tags document-types
// @Accept json
// @Produce json
// @Param request body handler.documentTypeRequest true "type name"
// @Success 201 {object} model.DocumentType
// @Failure 400 {object} handler.errorPayload
// @Failure 409 {object} handler.errorPayload
// @Router /document-types [post]
func CreateDocumentType(svc service.DocumentTypeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req documentTypeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		dt, err := svc.Create(c.UserContext(), req.Name)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dt)
	}
}

// ListDocumentTypes returns all document types ordered by name.
//
// @Summary List document types
// @Tags document-types
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /document-types [get]
func ListDocumentTypes(svc service.DocumentTypeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		types, err := svc.List(c.UserContext())
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": types})
	}
}

// GetDocumentType returns a document type by slug.
//
// @Summary Get a document type
// @Tags document-types
// @Produce json
// @Param slug path string true "document type slug"
// @Success 200 {object} model.DocumentType
// @Failure 404 {object} handler.errorPayload
// @Router /document-types/{slug} [get]
func GetDocumentType(svc service.DocumentTypeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dt, err := svc.GetBySlug(c.UserContext(), c.Params("slug"))
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(dt)
	}
}

// RenameDocumentType changes the display name. The slug stays as it was
// derived at creation, so existing references keep working.
//
// @Summary Rename a document type
// @Tags document-types
// @Accept json
// @Produce json
// @Param slug path string true "document type slug"
// @Param request body handler.documentTypeRequest true "new name"
// @Success 200 {object} model.DocumentType
// @Failure 404 {object} handler.errorPayload
// @Router /document-types/{slug} [put]
func RenameDocumentType(svc service.DocumentTypeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req documentTypeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		dt, err := svc.Rename(c.UserContext(), c.Params("slug"), req.Name)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(dt)
	}
}

// DeleteDocumentType removes a document type. Refused with 409 while any
// document still references it.
//
// @Summary Delete a document type
// @Tags document-types
// @Param slug path string true "document type slug"
// @Success 204 "no content"
// @Failure 404 {object} handler.errorPayload
// @Failure 409 {object} handler.errorPayload
// @Router /document-types/{slug} [delete]
func DeleteDocumentType(svc service.DocumentTypeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("slug")); err != nil {
			return mapServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
