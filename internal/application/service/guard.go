package service

import (
	"context"
	"fmt"

	"github.com/delego-hq/delego/internal/application/port"
	"github.com/delego-hq/delego/internal/domain/apperr"
	"github.com/delego-hq/delego/internal/domain/entity"
)

// Guard performs role- and relationship-based authorization for the
// workflow actions. Authorization failures are Forbidden; a missing or
// unknown actor is Unauthorized, never Forbidden.
type Guard struct {
	employees port.EmployeeRepository
}

// NewGuard creates a new Guard
func NewGuard(employees port.EmployeeRepository) *Guard {
	return &Guard{employees: employees}
}

// Actor resolves the acting employee. The identity was authenticated
// upstream, so an account that no longer exists maps to Unauthorized.
// The is_active check happens here, before any role check.
func (g *Guard) Actor(ctx context.Context, actorID int64) (*entity.Employee, error) {
	actor, err := g.employees.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolve actor: %w", err)
	}
	if actor == nil {
		return nil, apperr.Unauthorizedf("unknown actor")
	}
	if !actor.IsActive {
		return nil, apperr.Forbiddenf("account is inactive")
	}
	return actor, nil
}

// RequireRole checks that the actor holds one of the given roles
func (g *Guard) RequireRole(actor *entity.Employee, roles ...entity.Role) error {
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return apperr.Forbiddenf("access denied for role %s", actor.Role)
}

// RequireOwner checks that the actor owns the delegation
func (g *Guard) RequireOwner(actor *entity.Employee, delegation *entity.Delegation) error {
	if delegation.EmployeeID != actor.ID {
		return apperr.Forbiddenf("delegation %d does not belong to you", delegation.ID)
	}
	return nil
}

// RequireManagerOf checks that the actor is a manager and the delegation
// owner is their direct report. One level only; an employee reporting to
// a manager who reports to the actor does not qualify.
func (g *Guard) RequireManagerOf(ctx context.Context, actor *entity.Employee, delegation *entity.Delegation) error {
	if err := g.RequireRole(actor, entity.RoleManager); err != nil {
		return err
	}

	owner, err := g.employees.GetByID(ctx, delegation.EmployeeID)
	if err != nil {
		return fmt.Errorf("resolve delegation owner: %w", err)
	}
	if owner == nil || !owner.ReportsTo(actor.ID) {
		return apperr.Forbiddenf("delegation %d does not belong to one of your subordinates", delegation.ID)
	}
	return nil
}
