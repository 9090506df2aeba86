package domain

import (
	"fmt"

	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// ProgressionRule is one directed edge of the status graph. CanReverse marks
// edges a super admin may traverse backward.
type ProgressionRule struct {
	Current ComplaintStatus
	Next    ComplaintStatus
	Reverse bool
}

// RuleSet holds the allowed status transitions, keyed by current status.
type RuleSet map[ComplaintStatus][]RuleEdge

// RuleEdge is a forward edge with its reversibility flag.
type RuleEdge struct {
	Next       ComplaintStatus
	Reversible bool
}

// DefaultRules returns the fixed progression table. Transitions are data,
// not code branches; new transitions are additions here and in the seed.
func DefaultRules() RuleSet {
	return RuleSet{
		StatusPending: {
			{Next: StatusAssigned, Reversible: true},
		},
		StatusAssigned: {
			{Next: StatusInProgress, Reversible: true},
		},
		StatusInProgress: {
			{Next: StatusOnHold, Reversible: false},
			{Next: StatusResolved, Reversible: true},
		},
		StatusOnHold: {
			{Next: StatusInProgress, Reversible: false},
		},
		StatusResolved: {
			{Next: StatusClosed, Reversible: false},
		},
	}
}

// NewRuleSet builds a RuleSet from flat rule rows (as loaded from storage).
func NewRuleSet(rules []ProgressionRule) RuleSet {
	set := make(RuleSet, len(rules))
	for _, rule := range rules {
		set[rule.Current] = append(set[rule.Current], RuleEdge{Next: rule.Next, Reversible: rule.Reverse})
	}
	return set
}

func (r RuleSet) forwardEdge(current, next ComplaintStatus) (RuleEdge, bool) {
	for _, edge := range r[current] {
		if edge.Next == next {
			return edge, true
		}
	}
	return RuleEdge{}, false
}

// Validate accepts or rejects a requested status change. A nil return means
// the transition is allowed.
func (r RuleSet) Validate(current, requested ComplaintStatus, actorIsSuperAdmin bool) error {
	if current == requested {
		return apperrors.NewConflict(
			fmt.Sprintf("Status is already '%s'. Please select a different status to update.", current.Label()), nil)
	}

	if _, ok := r.forwardEdge(current, requested); ok {
		return nil
	}

	reverse, ok := r.forwardEdge(requested, current)
	if !ok {
		return apperrors.NewConflict(
			fmt.Sprintf("Cannot change status from '%s' to '%s'. This transition is not allowed.",
				current.Label(), requested.Label()), nil)
	}
	if !reverse.Reversible {
		return apperrors.NewConflict(
			fmt.Sprintf("Cannot reverse status from '%s' to '%s'. This change cannot be reversed.",
				current.Label(), requested.Label()), nil)
	}
	if !actorIsSuperAdmin {
		return apperrors.NewForbidden(
			fmt.Sprintf("Cannot reverse status from '%s' to '%s'. Only a super admin can reverse this change.",
				current.Label(), requested.Label()))
	}
	return nil
}

// AllowedNext lists statuses reachable from current via forward edges.
func (r RuleSet) AllowedNext(current ComplaintStatus) []RuleEdge {
	edges := r[current]
	out := make([]RuleEdge, len(edges))
	copy(out, edges)
	return out
}
