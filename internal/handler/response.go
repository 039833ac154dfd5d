package handler

import (
	"encoding/json"
	"strconv"

	"go-bom-graph/pkg/apperror"
	"go-bom-graph/pkg/logger"
	"go-bom-graph/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// respondError maps err to its status and writes {"error": message}.
// Internal failures are logged and reported with a generic message.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	kind := apperror.KindOf(err)
	meta := apperror.MetadataFor(kind)

	message := meta.PublicMessage
	if typed := apperror.As(err); typed != nil && meta.Verbatim {
		message = typed.Message()
	}
	if kind == apperror.KindInternal {
		log.Error(c.UserContext(), "request failed", err)
	}
	return c.Status(meta.HTTPStatus).JSON(fiber.Map{"error": message})
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("Invalid JSON")
	}
	if errs := validator.ValidateStruct(out); len(errs) > 0 {
		return apperror.Validation(validator.FirstMessage(errs))
	}
	return nil
}

// quantityValue returns fallback for a missing quantity and 0 for anything
// that is not an integer, leaving the positive check to the service so it
// runs after the existence checks.
func quantityValue(raw *json.Number, fallback int) int {
	if raw == nil {
		return fallback
	}
	quantity, err := strconv.Atoi(raw.String())
	if err != nil {
		return 0
	}
	return quantity
}
