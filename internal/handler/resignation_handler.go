package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/maestro-api/internal/boundary"
	"github.com/noah-isme/maestro-api/internal/dto"
	"github.com/noah-isme/maestro-api/internal/service"
	"github.com/noah-isme/maestro-api/internal/utils"
)

// ResignationHandler serves the staff resignation workflow.
type ResignationHandler struct {
	service service.ResignationService
	logger  zerolog.Logger
}

// NewResignationHandler constructs a resignation handler.
func NewResignationHandler(service service.ResignationService, logger zerolog.Logger) *ResignationHandler {
	return &ResignationHandler{
		service: service,
		logger:  logger.With().Str("component", "resignation_handler").Logger(),
	}
}

// Register wires resignation routes.
func (h *ResignationHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("/mine", h.listMine)
	router.Patch("/:id/decision", h.decide)
}

func (h *ResignationHandler) submit(c *fiber.Ctx) error {
	if err := boundary.Check(boundary.ResignationCreate, c.Body()); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", err.Error())
	}

	var payload dto.ResignationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Submit(c.UserContext(), payload)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to submit resignation request")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "resignation request submitted", response)
}

func (h *ResignationHandler) listMine(c *fiber.Ctx) error {
	filter := dto.ReviewFilter{Status: c.Query("status")}

	responses, err := h.service.ListByMentor(c.UserContext(), userIDFromContext(c), filter)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to list resignation requests")
	}

	return utils.SendSuccess(c, "resignation requests retrieved", responses)
}

func (h *ResignationHandler) decide(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	if err := boundary.Check(boundary.ResignationDecision, c.Body()); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", err.Error())
	}

	var payload dto.ResignationDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Decide(c.UserContext(), id, actorFromContext(c), payload)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to decide resignation request")
	}

	return utils.SendSuccess(c, "resignation request decided", response)
}
