package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/maestro-api/internal/dto"
	"github.com/noah-isme/maestro-api/internal/service"
	"github.com/noah-isme/maestro-api/internal/utils"
)

// ReviewHandler serves the reviewer-facing read surfaces: classroom buckets,
// badge counts and the applicant's own request feed.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler constructs a review handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("component", "review_handler").Logger(),
	}
}

// RegisterClassroomRoutes wires the classroom review surfaces.
func (h *ReviewHandler) RegisterClassroomRoutes(router fiber.Router) {
	router.Get("/:classroomId/requests", h.classroomRequests)
	router.Get("/:classroomId/requests/counts", h.classroomCounts)
}

// RegisterMentorRoutes wires the mentor's own request feed.
func (h *ReviewHandler) RegisterMentorRoutes(router fiber.Router) {
	router.Get("/requests", h.mentorRequests)
}

// RegisterAdminRoutes wires the admin master-role review surface.
func (h *ReviewHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/master-role-requests", h.masterRoleRequests)
}

func (h *ReviewHandler) classroomRequests(c *fiber.Ctx) error {
	classroomID, err := parseUintParam(c, "classroomId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid classroom id")
	}

	filter := dto.ReviewFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	response, err := h.service.ClassroomRequests(c.UserContext(), actorFromContext(c), classroomID, filter)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to load classroom requests")
	}

	return utils.SendSuccess(c, "classroom requests retrieved", response)
}

func (h *ReviewHandler) classroomCounts(c *fiber.Ctx) error {
	classroomID, err := parseUintParam(c, "classroomId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid classroom id")
	}

	counts, err := h.service.ClassroomCounts(c.UserContext(), actorFromContext(c), classroomID)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to load classroom counts")
	}

	return utils.SendSuccess(c, "classroom counts retrieved", counts)
}

func (h *ReviewHandler) mentorRequests(c *fiber.Ctx) error {
	response, err := h.service.MentorRequests(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to load mentor requests")
	}

	return utils.SendSuccess(c, "mentor requests retrieved", response)
}

func (h *ReviewHandler) masterRoleRequests(c *fiber.Ctx) error {
	filter := dto.ReviewFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	buckets, err := h.service.MasterRoleRequests(c.UserContext(), actorFromContext(c), filter)
	if err != nil {
		return respondWorkflowError(c, requestLogger(h.logger, c), err, "failed to load master-role requests")
	}

	return utils.SendSuccess(c, "master-role requests retrieved", buckets)
}
