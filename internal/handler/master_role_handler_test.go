package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
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

type mockMasterRoleService struct {
	lastPayload  dto.MasterRoleCreateRequest
	lastReviewer session.Actor
	response     dto.MasterRoleResponse
	err          error
}

func (m *mockMasterRoleService) Submit(_ context.Context, payload dto.MasterRoleCreateRequest) (dto.MasterRoleResponse, error) {
	m.lastPayload = payload
	if m.err != nil {
		return dto.MasterRoleResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockMasterRoleService) List(_ context.Context, reviewer session.Actor, _ dto.ReviewFilter) ([]dto.MasterRoleResponse, error) {
	m.lastReviewer = reviewer
	if m.err != nil {
		return nil, m.err
	}
	return []dto.MasterRoleResponse{m.response}, nil
}

func (m *mockMasterRoleService) Decide(_ context.Context, _ uint, reviewer session.Actor, _ dto.MasterRoleDecisionRequest) (dto.MasterRoleResponse, error) {
	m.lastReviewer = reviewer
	if m.err != nil {
		return dto.MasterRoleResponse{}, m.err
	}
	return m.response, nil
}

func newMasterRoleApp(svc service.MasterRoleService, locals map[string]interface{}) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/master-role-requests", func(c *fiber.Ctx) error {
		for key, value := range locals {
			c.Locals(key, value)
		}
		return c.Next()
	})
	handler.NewMasterRoleHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func TestMasterRoleHandlerSubmitSuccess(t *testing.T) {
	svc := &mockMasterRoleService{response: dto.MasterRoleResponse{ID: 1, MentorID: 7, Status: "pending"}}
	app := newMasterRoleApp(svc, map[string]interface{}{"user_id": uint(7), "user_role": "mentor"})

	payload := map[string]interface{}{
		"mentor_id":          7,
		"reason":             "long enough reason",
		"experience":         "experience",
		"planned_classrooms": "plans",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/master-role-requests", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastPayload.MentorID)
}

func TestMasterRoleHandlerSubmitRejectsUnknownFields(t *testing.T) {
	svc := &mockMasterRoleService{}
	app := newMasterRoleApp(svc, nil)

	body := []byte(`{"mentor_id": 7, "reason": "r", "experience": "e", "planned_classrooms": "p", "status": "approved"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/master-role-requests", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Zero(t, svc.lastPayload.MentorID, "payload must never reach the service")
}

func TestMasterRoleHandlerDecideStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden reviewer", service.ErrForbidden, fiber.StatusForbidden},
		{"self review", service.ErrSelfReview, fiber.StatusForbidden},
		{"missing request", service.ErrNotFound, fiber.StatusNotFound},
		{"already reviewed", service.ErrAlreadyReviewed, fiber.StatusConflict},
		{"stale request", service.ErrStaleRequest, fiber.StatusGone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockMasterRoleService{err: tc.err}
			app := newMasterRoleApp(svc, map[string]interface{}{"user_id": uint(9), "user_role": "admin"})

			body := []byte(`{"status": "approved"}`)
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/master-role-requests/5/decision", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestMasterRoleHandlerDecidePassesReviewerIdentity(t *testing.T) {
	svc := &mockMasterRoleService{response: dto.MasterRoleResponse{ID: 5, Status: "approved"}}
	app := newMasterRoleApp(svc, map[string]interface{}{
		"user_id":   uint(9),
		"user_role": "admin",
		"is_master": false,
	})

	body := []byte(`{"status": "approved", "admin_notes": "ok"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/master-role-requests/5/decision", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(9), svc.lastReviewer.ID)
	require.Equal(t, "admin", string(svc.lastReviewer.Role))
}

func TestMasterRoleHandlerDecideRejectsBadID(t *testing.T) {
	svc := &mockMasterRoleService{}
	app := newMasterRoleApp(svc, nil)

	body := []byte(`{"status": "approved"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/master-role-requests/abc/decision", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
