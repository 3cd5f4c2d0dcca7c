package controller

import (
	"docintel-be/internal/dto"
	"docintel-be/internal/pkg/serverutils"
	"docintel-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRagController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type ragController struct {
	retrievalService service.IRetrievalService
	historyService   service.IHistoryService
	authMiddleware   fiber.Handler
}

func NewRagController(
	retrievalService service.IRetrievalService,
	historyService service.IHistoryService,
	authMiddleware fiber.Handler,
) IRagController {
	return &ragController{
		retrievalService: retrievalService,
		historyService:   historyService,
		authMiddleware:   authMiddleware,
	}
}

func (c *ragController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rag/v1")
	h.Use(c.authMiddleware)
	h.Post("/query", c.Query)
	h.Get("/history", c.History)
}

func (c *ragController) Query(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.retrievalService.Query(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success query documents", res))
}

func (c *ragController) History(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.historyService.GetAll(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get query history", res))
}
