package session

import "github.com/noah-isme/maestro-api/internal/models"

// Decision is the terminal presentation state produced by the access gate.
type Decision string

// Gate decisions.
const (
	DecisionLoading         Decision = "loading"
	DecisionUnauthenticated Decision = "unauthenticated"
	DecisionForbidden       Decision = "forbidden"
	DecisionAllowed         Decision = "allowed"
)

// Requirement describes what a protected capability demands of the actor:
// membership in a role set, optionally combined with the master flag.
type Requirement struct {
	Roles         []models.ActorRole
	RequireMaster bool
}

// RequireRole builds an exact-role requirement.
func RequireRole(role models.ActorRole) Requirement {
	return Requirement{Roles: []models.ActorRole{role}}
}

// RequireAnyRole builds a role-set requirement.
func RequireAnyRole(roles ...models.ActorRole) Requirement {
	return Requirement{Roles: roles}
}

// RequireMasterMentor gates master-only capabilities: mentor AND isMaster.
func RequireMasterMentor() Requirement {
	return Requirement{Roles: []models.ActorRole{models.RoleMentor}, RequireMaster: true}
}

// Satisfied reports whether the actor meets the requirement.
func (r Requirement) Satisfied(actor Actor) bool {
	if len(r.Roles) > 0 {
		matched := false
		for _, role := range r.Roles {
			if actor.Role == role {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if r.RequireMaster && !actor.IsMaster {
		return false
	}
	return true
}

// Evaluate maps an actor snapshot and a requirement onto a gate decision.
// A nil actor with resolved=false means resolution is still in flight.
func Evaluate(actor *Actor, resolved bool, requirement Requirement) Decision {
	if !resolved {
		return DecisionLoading
	}
	if actor == nil {
		return DecisionUnauthenticated
	}
	if !requirement.Satisfied(*actor) {
		return DecisionForbidden
	}
	return DecisionAllowed
}
