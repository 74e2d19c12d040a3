package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/maestro-api/internal/dto"
	"github.com/noah-isme/maestro-api/internal/handler"
	"github.com/noah-isme/maestro-api/internal/service"
	"github.com/noah-isme/maestro-api/internal/session"
)

type mockEnrollmentService struct {
	lastClassroomID uint
	lastReviewer    session.Actor
	response        dto.MembershipResponse
	err             error
}

func (m *mockEnrollmentService) Submit(_ context.Context, classroomID uint, _ dto.EnrollmentCreateRequest) (dto.MembershipResponse, error) {
	m.lastClassroomID = classroomID
	if m.err != nil {
		return dto.MembershipResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockEnrollmentService) ListByClassroom(_ context.Context, reviewer session.Actor, classroomID uint, _ string) ([]dto.MembershipResponse, error) {
	m.lastReviewer = reviewer
	m.lastClassroomID = classroomID
	if m.err != nil {
		return nil, m.err
	}
	return []dto.MembershipResponse{m.response}, nil
}

func (m *mockEnrollmentService) Decide(_ context.Context, _ uint, reviewer session.Actor, _ dto.MembershipDecisionRequest) (dto.MembershipResponse, error) {
	m.lastReviewer = reviewer
	if m.err != nil {
		return dto.MembershipResponse{}, m.err
	}
	return m.response, nil
}

func newEnrollmentApp(svc service.EnrollmentService, locals map[string]interface{}) *fiber.App {
	app := fiber.New()
	seed := func(c *fiber.Ctx) error {
		for key, value := range locals {
			c.Locals(key, value)
		}
		return c.Next()
	}
	h := handler.NewEnrollmentHandler(svc, zerolog.Nop())
	h.RegisterClassroomRoutes(app.Group("/api/v1/classrooms", seed))
	h.RegisterMembershipRoutes(app.Group("/api/v1/memberships", seed))
	return app
}

func TestEnrollmentHandlerSubmitUsesRouteClassroom(t *testing.T) {
	svc := &mockEnrollmentService{response: dto.MembershipResponse{ID: 1, Status: "pending"}}
	app := newEnrollmentApp(svc, nil)

	body := []byte(`{"student_id": 3}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classrooms/12/enrollments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(12), svc.lastClassroomID)
}

func TestEnrollmentHandlerSubmitRejectsExtraFields(t *testing.T) {
	svc := &mockEnrollmentService{}
	app := newEnrollmentApp(svc, nil)

	body := []byte(`{"student_id": 3, "status": "active"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classrooms/12/enrollments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEnrollmentHandlerDecideMapsCapacityConflict(t *testing.T) {
	svc := &mockEnrollmentService{err: service.ErrClassroomFull}
	app := newEnrollmentApp(svc, map[string]interface{}{
		"user_id":   uint(9),
		"user_role": "mentor",
		"is_master": true,
	})

	body := []byte(`{"status": "active"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/memberships/4/decision", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.True(t, svc.lastReviewer.IsMaster, "master flag must flow from locals to the service")
}

func TestEnrollmentHandlerListForwardsReviewer(t *testing.T) {
	svc := &mockEnrollmentService{response: dto.MembershipResponse{ID: 2, Status: "pending"}}
	app := newEnrollmentApp(svc, map[string]interface{}{
		"user_id":   uint(10),
		"user_role": "mentor",
		"is_master": true,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/classrooms/12/enrollments?status=pending", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(10), svc.lastReviewer.ID)
}
