package serverutils

import (
	"context"
	"errors"

	"docintel-be/pkg/embedding"
	"docintel-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders any error returned further down the chain
// as an ErrorResponse with a status derived from the error.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, message := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// StatusFor maps an error to an HTTP status and a client-safe message.
func StatusFor(err error) (int, string) {
	var fiberErr *fiber.Error
	var validationErr *ValidationError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.Is(err, rag.ErrInvalidArgument):
		return fiber.StatusBadRequest, "Invalid request"
	case errors.Is(err, rag.ErrNoReadyDocuments):
		return fiber.StatusNotFound, "No processed documents to search"
	case errors.Is(err, rag.ErrNoExtractableContent):
		return fiber.StatusNotFound, "No readable content in your documents"
	case embedding.IsEmbeddingError(err):
		return fiber.StatusBadGateway, "Embedding provider unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "Request timed out"
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
