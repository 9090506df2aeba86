package service

import (
	"github.com/spec-kit/complaint-portal/internal/domain"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// CanModify is the authorization gate consulted before every mutation of a
// complaint. Rules are evaluated in strict order; the first match wins. A nil
// return means the actor may modify the complaint right now.
func CanModify(c *domain.Complaint, actor domain.Actor) error {
	// The lock outranks every other rule, including super-admin privilege.
	if err := requireUnlocked(c); err != nil {
		return err
	}
	if c.Status == domain.StatusClosed {
		return apperrors.NewConflict("This complaint is closed and cannot be modified. The user has confirmed the resolution.", nil)
	}
	if c.AssignedTo == nil {
		if actor.IsSuperAdmin {
			return apperrors.NewConflict("Please assign this complaint first before taking action.", nil)
		}
		return apperrors.NewForbidden("This complaint has not been assigned yet. Only a super admin can assign complaints.")
	}
	if *c.AssignedTo == actor.ID {
		return nil
	}
	if actor.IsSuperAdmin {
		return apperrors.NewForbidden("This complaint is assigned to another admin. Only the assigned admin can modify it.")
	}
	return apperrors.NewForbidden("This complaint is assigned to another admin.")
}

// requireUnlocked enforces the freeze on workflows that run outside the full
// gate: approval review, resubmission, and reopen decisions.
func requireUnlocked(c *domain.Complaint) error {
	if c.IsLocked {
		return apperrors.NewForbidden("This complaint is locked by a super admin. No modifications allowed until unlocked.")
	}
	return nil
}

// ModifyDecision is the queryable form of the gate for display purposes.
type ModifyDecision struct {
	Allowed bool
	Reason  string
}

// DecideModify evaluates the gate without treating denial as an error.
func DecideModify(c *domain.Complaint, actor domain.Actor) ModifyDecision {
	if err := CanModify(c, actor); err != nil {
		return ModifyDecision{Allowed: false, Reason: apperrors.ToDomainError(err).Message}
	}
	return ModifyDecision{Allowed: true}
}
