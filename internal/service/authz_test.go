package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-portal/internal/domain"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

func TestCanModifyOrdering(t *testing.T) {
	adminID := "admin-1"
	otherID := "admin-2"

	tests := []struct {
		name      string
		complaint domain.Complaint
		actor     domain.Actor
		wantErr   string
		wantCode  string
	}{
		{
			name: "lock outranks everything even for super admin",
			complaint: domain.Complaint{
				IsLocked:   true,
				Status:     domain.StatusClosed,
				AssignedTo: &adminID,
			},
			actor:    domain.Actor{ID: adminID, IsSuperAdmin: true},
			wantErr:  "locked by a super admin",
			wantCode: "FORBIDDEN",
		},
		{
			name: "closed checked before assignment",
			complaint: domain.Complaint{
				Status: domain.StatusClosed,
			},
			actor:    domain.Actor{ID: adminID, IsSuperAdmin: true},
			wantErr:  "closed and cannot be modified",
			wantCode: "CONFLICT",
		},
		{
			name: "unassigned super admin told to assign first",
			complaint: domain.Complaint{
				Status: domain.StatusPending,
			},
			actor:    domain.Actor{ID: adminID, IsSuperAdmin: true},
			wantErr:  "Please assign this complaint first",
			wantCode: "CONFLICT",
		},
		{
			name: "unassigned regular admin cannot act",
			complaint: domain.Complaint{
				Status: domain.StatusPending,
			},
			actor:    domain.Actor{ID: adminID},
			wantErr:  "Only a super admin can assign",
			wantCode: "FORBIDDEN",
		},
		{
			name: "assigned to another admin, super admin",
			complaint: domain.Complaint{
				Status:     domain.StatusAssigned,
				AssignedTo: &otherID,
			},
			actor:    domain.Actor{ID: adminID, IsSuperAdmin: true},
			wantErr:  "Only the assigned admin can modify it",
			wantCode: "FORBIDDEN",
		},
		{
			name: "assigned to another admin, regular admin",
			complaint: domain.Complaint{
				Status:     domain.StatusAssigned,
				AssignedTo: &otherID,
			},
			actor:    domain.Actor{ID: adminID},
			wantErr:  "assigned to another admin",
			wantCode: "FORBIDDEN",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanModify(&tt.complaint, tt.actor)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.wantCode, apperrors.ToDomainError(err).Code)
		})
	}
}

func TestCanModifyAssigneeAllowed(t *testing.T) {
	adminID := "admin-1"
	complaint := domain.Complaint{
		Status:     domain.StatusAssigned,
		AssignedTo: &adminID,
	}

	assert.NoError(t, CanModify(&complaint, domain.Actor{ID: adminID}))
	assert.NoError(t, CanModify(&complaint, domain.Actor{ID: adminID, IsSuperAdmin: true}))
}

func TestDecideModify(t *testing.T) {
	adminID := "admin-1"
	complaint := domain.Complaint{
		Status:     domain.StatusAssigned,
		AssignedTo: &adminID,
	}

	decision := DecideModify(&complaint, domain.Actor{ID: adminID})
	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reason)

	complaint.IsLocked = true
	decision = DecideModify(&complaint, domain.Actor{ID: adminID})
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "locked")
}
