package session

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/maestro-api/internal/models"
)

func TestBindingStartsLoadingThenFollowsSession(t *testing.T) {
	broadcaster := NewBroadcaster(zerolog.Nop())

	var decisions []Decision
	binding := Bind(broadcaster, RequireMasterMentor(), func(d Decision) {
		decisions = append(decisions, d)
	})
	defer binding.Close()

	require.Equal(t, DecisionLoading, binding.Current())

	broadcaster.Login(Actor{ID: 1, Role: models.RoleMentor})
	require.Equal(t, DecisionForbidden, binding.Current())

	broadcaster.Login(Actor{ID: 1, Role: models.RoleMentor, IsMaster: true})
	require.Equal(t, DecisionAllowed, binding.Current())

	broadcaster.Logout()
	require.Equal(t, DecisionUnauthenticated, binding.Current())

	require.Equal(t, []Decision{DecisionLoading, DecisionForbidden, DecisionAllowed, DecisionUnauthenticated}, decisions)
}

func TestBindingStopsAfterClose(t *testing.T) {
	broadcaster := NewBroadcaster(zerolog.Nop())
	broadcaster.Login(Actor{ID: 2, Role: models.RoleAdmin})

	binding := Bind(broadcaster, RequireRole(models.RoleAdmin), nil)
	require.Equal(t, DecisionAllowed, binding.Current())

	binding.Close()
	broadcaster.Logout()
	require.Equal(t, DecisionAllowed, binding.Current(), "closed bindings keep their last decision")
}

func TestBroadcasterSnapshotIsolation(t *testing.T) {
	broadcaster := NewBroadcaster(zerolog.Nop())

	actor, resolved := broadcaster.CurrentActor()
	require.Nil(t, actor)
	require.False(t, resolved, "unresolved until the first transition")

	broadcaster.Login(Actor{ID: 3, Role: models.RoleStudent})
	snapshot, resolved := broadcaster.CurrentActor()
	require.True(t, resolved)
	require.NotNil(t, snapshot)

	// Mutating the returned snapshot never leaks into the broadcaster.
	snapshot.Role = models.RoleAdmin
	fresh, _ := broadcaster.CurrentActor()
	require.Equal(t, models.RoleStudent, fresh.Role)
}

func TestBroadcasterUnsubscribeStopsEvents(t *testing.T) {
	broadcaster := NewBroadcaster(zerolog.Nop())

	var events int
	unsubscribe := broadcaster.Subscribe(func(Event) { events++ })

	broadcaster.Login(Actor{ID: 4, Role: models.RoleMentor})
	require.Equal(t, 1, events)

	unsubscribe()
	broadcaster.Logout()
	require.Equal(t, 1, events)
}
