package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/maestro-api/internal/boundary"
	"github.com/noah-isme/maestro-api/internal/dto"
	"github.com/noah-isme/maestro-api/internal/service"
	"github.com/noah-isme/maestro-api/internal/utils"
)

// MasterRoleHandler serves the master-role application workflow.
type MasterRoleHandler struct {
	service service.MasterRoleService
	logger  zerolog.Logger
}

// NewMasterRoleHandler constructs a master-role handler.
func NewMasterRoleHandler(service service.MasterRoleService, logger zerolog.Logger) *MasterRoleHandler {
	return &MasterRoleHandler{
		service: service,
		logger:  logger.With().Str("component", "master_role_handler").Logger(),
	}
}

// Register wires master-role routes.
func (h *MasterRoleHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("", h.list)
	router.Patch("/:id/decision", h.decide)
}

func (h *MasterRoleHandler) submit(c *fiber.Ctx) error {
	if err := boundary.Check(boundary.MasterRoleCreate, c.Body()); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", err.Error())
	}

	var payload dto.MasterRoleCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Submit(c.UserContext(), payload)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to submit master-role request")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "master-role request submitted", response)
}

func (h *MasterRoleHandler) list(c *fiber.Ctx) error {
	filter := dto.ReviewFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	responses, err := h.service.List(c.UserContext(), actorFromContext(c), filter)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to list master-role requests")
	}

	return utils.SendSuccess(c, "master-role requests retrieved", responses)
}

func (h *MasterRoleHandler) decide(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	if err := boundary.Check(boundary.MasterRoleDecision, c.Body()); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", err.Error())
	}

	var payload dto.MasterRoleDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Decide(c.UserContext(), id, actorFromContext(c), payload)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to decide master-role request")
	}

	return utils.SendSuccess(c, "master-role request decided", response)
}
