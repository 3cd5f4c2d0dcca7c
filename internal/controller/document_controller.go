package controller

import (
	"errors"

	"docintel-be/internal/dto"
	"docintel-be/internal/pkg/serverutils"
	"docintel-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	service        service.IDocumentService
	authMiddleware fiber.Handler
}

func NewDocumentController(service service.IDocumentService, authMiddleware fiber.Handler) IDocumentController {
	return &documentController{service: service, authMiddleware: authMiddleware}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(c.authMiddleware)
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
	h.Put(":id/status", c.UpdateStatus)
	h.Delete(":id", c.Delete)
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetAll(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all document", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	res, err := c.service.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return documentError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) UpdateStatus(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	var req dto.UpdateDocumentStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateStatus(ctx.UserContext(), userId, id, &req)
	if err != nil {
		return documentError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document status", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	if err := c.service.Delete(ctx.UserContext(), userId, id); err != nil {
		return documentError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}

func documentError(err error) error {
	if errors.Is(err, service.ErrDocumentNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Document not found")
	}
	return err
}
