package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

// idParam reads a path parameter that must hold a UUID.
func idParam(c *fiber.Ctx, name string) (string, error) {
	return parseID(name, c.Params(name))
}

// parseID normalises a UUID-valued field or rejects it as a validation failure.
func parseID(field, value string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", apperrors.NewValidationError("invalid "+field, map[string]any{field: value})
	}
	return id.String(), nil
}
