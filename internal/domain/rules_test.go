package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

var allStatuses = []ComplaintStatus{
	StatusPending, StatusAssigned, StatusInProgress,
	StatusOnHold, StatusResolved, StatusClosed,
}

func TestValidateForwardEdges(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name    string
		current ComplaintStatus
		next    ComplaintStatus
	}{
		{"pending to assigned", StatusPending, StatusAssigned},
		{"assigned to in progress", StatusAssigned, StatusInProgress},
		{"in progress to on hold", StatusInProgress, StatusOnHold},
		{"on hold to in progress", StatusOnHold, StatusInProgress},
		{"in progress to resolved", StatusInProgress, StatusResolved},
		{"resolved to closed", StatusResolved, StatusClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Forward edges never need super admin privilege.
			assert.NoError(t, rules.Validate(tt.current, tt.next, false))
			assert.NoError(t, rules.Validate(tt.current, tt.next, true))
		})
	}
}

func TestValidateIdentityAlwaysDenied(t *testing.T) {
	rules := DefaultRules()
	for _, status := range allStatuses {
		err := rules.Validate(status, status, true)
		require.Error(t, err, "identity transition for %s", status)
		assert.Contains(t, err.Error(), "Status is already")
	}
}

func TestValidateUnknownTransitionDenied(t *testing.T) {
	rules := DefaultRules()

	forward := map[ComplaintStatus]map[ComplaintStatus]bool{}
	for current, edges := range rules {
		forward[current] = map[ComplaintStatus]bool{}
		for _, edge := range edges {
			forward[current][edge.Next] = true
		}
	}

	for _, current := range allStatuses {
		for _, next := range allStatuses {
			if current == next || forward[current][next] {
				continue
			}
			if forward[next][current] {
				// Reverse edges are covered separately.
				continue
			}
			err := rules.Validate(current, next, true)
			require.Error(t, err, "%s -> %s", current, next)
			assert.Contains(t, err.Error(), "not allowed")
		}
	}
}

func TestValidateReversal(t *testing.T) {
	rules := DefaultRules()

	t.Run("reversible edge requires super admin", func(t *testing.T) {
		err := rules.Validate(StatusAssigned, StatusPending, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only a super admin can reverse this change")

		de := apperrors.ToDomainError(err)
		assert.Equal(t, "FORBIDDEN", de.Code)

		assert.NoError(t, rules.Validate(StatusAssigned, StatusPending, true))
	})

	t.Run("irreversible edge denied even for super admin", func(t *testing.T) {
		// Resolved -> Closed is not reversible, so Closed -> Resolved is
		// denied regardless of privilege.
		err := rules.Validate(StatusClosed, StatusResolved, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be reversed")

		de := apperrors.ToDomainError(err)
		assert.Equal(t, "CONFLICT", de.Code)
	})
}

func TestAllowedNext(t *testing.T) {
	rules := DefaultRules()

	edges := rules.AllowedNext(StatusInProgress)
	require.Len(t, edges, 2)

	assert.Empty(t, rules.AllowedNext(StatusClosed))
}
