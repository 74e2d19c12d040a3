package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/maestro-api/internal/boundary"
	"github.com/noah-isme/maestro-api/internal/dto"
	"github.com/noah-isme/maestro-api/internal/service"
	"github.com/noah-isme/maestro-api/internal/utils"
)

// EnrollmentHandler serves the student admission workflow.
type EnrollmentHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewEnrollmentHandler constructs an enrollment handler.
func NewEnrollmentHandler(service service.EnrollmentService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// RegisterClassroomRoutes wires routes scoped under a classroom.
func (h *EnrollmentHandler) RegisterClassroomRoutes(router fiber.Router) {
	router.Post("/:classroomId/enrollments", h.submit)
	router.Get("/:classroomId/enrollments", h.list)
}

// RegisterMembershipRoutes wires routes scoped to a membership.
func (h *EnrollmentHandler) RegisterMembershipRoutes(router fiber.Router) {
	router.Patch("/:id/decision", h.decide)
}

func (h *EnrollmentHandler) submit(c *fiber.Ctx) error {
	classroomID, err := parseUintParam(c, "classroomId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid classroom id")
	}

	if err := boundary.Check(boundary.EnrollmentCreate, c.Body()); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", err.Error())
	}

	var payload dto.EnrollmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Submit(c.UserContext(), classroomID, payload)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to submit enrollment")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrollment submitted", response)
}

func (h *EnrollmentHandler) list(c *fiber.Ctx) error {
	classroomID, err := parseUintParam(c, "classroomId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid classroom id")
	}

	responses, err := h.service.ListByClassroom(c.UserContext(), actorFromContext(c), classroomID, c.Query("status"))
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to list enrollments")
	}

	return utils.SendSuccess(c, "enrollments retrieved", responses)
}

func (h *EnrollmentHandler) decide(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid membership id")
	}

	if err := boundary.Check(boundary.EnrollmentDecision, c.Body()); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", err.Error())
	}

	var payload dto.MembershipDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Decide(c.UserContext(), id, actorFromContext(c), payload)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to decide enrollment")
	}

	return utils.SendSuccess(c, "enrollment decided", response)
}
