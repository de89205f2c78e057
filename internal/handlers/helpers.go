package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ai-recruiter/internal/repositories"
	"ai-recruiter/internal/services"
)

// respondError maps domain errors onto HTTP statuses. Anything unrecognized
// is a 500.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var malformed *services.MalformedResponseError
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrInterviewFinished):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrNoQuestions),
		errors.Is(err, services.ErrBatchTooLarge),
		errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.As(err, &malformed):
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return uint(id), nil
}
