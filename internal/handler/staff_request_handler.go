package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/maestro-api/internal/boundary"
	"github.com/noah-isme/maestro-api/internal/dto"
	"github.com/noah-isme/maestro-api/internal/service"
	"github.com/noah-isme/maestro-api/internal/utils"
)

// StaffRequestHandler serves the staff-join workflow.
type StaffRequestHandler struct {
	service service.StaffRequestService
	logger  zerolog.Logger
}

// NewStaffRequestHandler constructs a staff-request handler.
func NewStaffRequestHandler(service service.StaffRequestService, logger zerolog.Logger) *StaffRequestHandler {
	return &StaffRequestHandler{
		service: service,
		logger:  logger.With().Str("component", "staff_request_handler").Logger(),
	}
}

// Register wires staff-request routes.
func (h *StaffRequestHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("/mine", h.listMine)
	router.Patch("/:id/decision", h.decide)
}

func (h *StaffRequestHandler) submit(c *fiber.Ctx) error {
	if err := boundary.Check(boundary.StaffCreate, c.Body()); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", err.Error())
	}

	var payload dto.StaffRequestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Submit(c.UserContext(), payload)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to submit staff request")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "staff request submitted", response)
}

func (h *StaffRequestHandler) listMine(c *fiber.Ctx) error {
	filter := dto.ReviewFilter{Status: c.Query("status")}

	responses, err := h.service.ListByMentor(c.UserContext(), userIDFromContext(c), filter)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to list staff requests")
	}

	return utils.SendSuccess(c, "staff requests retrieved", responses)
}

func (h *StaffRequestHandler) decide(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	if err := boundary.Check(boundary.StaffDecision, c.Body()); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", err.Error())
	}

	var payload dto.StaffRequestDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Decide(c.UserContext(), id, actorFromContext(c), payload)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to decide staff request")
	}

	return utils.SendSuccess(c, "staff request decided", response)
}
