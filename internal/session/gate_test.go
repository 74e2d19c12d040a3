package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/maestro-api/internal/models"
)

func TestEvaluateDecisions(t *testing.T) {
	student := &Actor{ID: 1, Role: models.RoleStudent}
	mentor := &Actor{ID: 2, Role: models.RoleMentor}
	master := &Actor{ID: 3, Role: models.RoleMentor, IsMaster: true}
	admin := &Actor{ID: 4, Role: models.RoleAdmin}

	cases := []struct {
		name        string
		actor       *Actor
		resolved    bool
		requirement Requirement
		want        Decision
	}{
		{"unresolved session is loading", nil, false, RequireRole(models.RoleMentor), DecisionLoading},
		{"nil actor is unauthenticated", nil, true, RequireRole(models.RoleMentor), DecisionUnauthenticated},
		{"wrong role is forbidden", student, true, RequireRole(models.RoleMentor), DecisionForbidden},
		{"matching role is allowed", mentor, true, RequireRole(models.RoleMentor), DecisionAllowed},
		{"mentor without master flag is forbidden", mentor, true, RequireMasterMentor(), DecisionForbidden},
		{"master mentor is allowed", master, true, RequireMasterMentor(), DecisionAllowed},
		{"admin is not a master mentor", admin, true, RequireMasterMentor(), DecisionForbidden},
		{"role set matches any listed role", admin, true, RequireAnyRole(models.RoleMentor, models.RoleAdmin), DecisionAllowed},
		{"empty role set with master flag", master, true, Requirement{RequireMaster: true}, DecisionAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Evaluate(tc.actor, tc.resolved, tc.requirement))
		})
	}
}

func TestRequirementSatisfiedIgnoresEmptyRoleSet(t *testing.T) {
	actor := Actor{ID: 5, Role: models.RoleStudent}
	require.True(t, Requirement{}.Satisfied(actor))
}
