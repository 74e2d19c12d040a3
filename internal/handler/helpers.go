package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/maestro-api/internal/middleware"
	"github.com/noah-isme/maestro-api/internal/models"
	"github.com/noah-isme/maestro-api/internal/service"
	"github.com/noah-isme/maestro-api/internal/session"
	"github.com/noah-isme/maestro-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

// actorFromContext assembles the session actor the middleware stashed in
// request locals.
func actorFromContext(c *fiber.Ctx) session.Actor {
	isMaster, _ := c.Locals("is_master").(bool)
	return session.Actor{
		ID:       userIDFromContext(c),
		Role:     models.ActorRole(strings.ToLower(userRoleFromContext(c))),
		IsMaster: isMaster,
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}

// respondWorkflowError translates the service error taxonomy onto HTTP
// statuses. Unknown errors are logged and masked as 500s.
func respondWorkflowError(c *fiber.Ctx, logger *zerolog.Logger, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "record not found")
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrSelfReview):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrAlreadyMaster),
		errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrClassroomInactive),
		errors.Is(err, service.ErrClassroomFull),
		errors.Is(err, service.ErrNoStaffMembership),
		errors.Is(err, service.ErrInvalidApplicant):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrStaleRequest):
		return utils.SendError(c, fiber.StatusGone, err.Error())
	default:
		logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
