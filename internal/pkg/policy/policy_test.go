package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/PixelBoard/app/models"
)

func uintPtr(v uint) *uint { return &v }

func TestCanModify(t *testing.T) {
	owner := uintPtr(1)

	tests := []struct {
		name   string
		caller Caller
		owner  *uint
		want   bool
	}{
		{"owner", Caller{ID: 1, Role: models.ROLE_USER}, owner, true},
		{"other user", Caller{ID: 2, Role: models.ROLE_USER}, owner, false},
		{"admin on foreign image", Caller{ID: 3, Role: models.ROLE_ADMIN}, owner, true},
		{"user on orphan", Caller{ID: 1, Role: models.ROLE_USER}, nil, false},
		{"admin on orphan", Caller{ID: 3, Role: models.ROLE_ADMIN}, nil, true},
		{"anonymous", Caller{}, uintPtr(0), false},
		{"unknown role", Caller{ID: 2, Role: "moderator"}, owner, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModify(tt.caller, tt.owner))
		})
	}
}

func TestAdminGate(t *testing.T) {
	assert.True(t, AdminGate(Caller{ID: 1, Role: models.ROLE_ADMIN}).Allowed)

	d := AdminGate(Caller{ID: 1, Role: models.ROLE_USER})
	assert.False(t, d.Allowed)
	assert.Equal(t, "admin role required", d.Reason)

	d = AdminGate(Caller{Role: models.ROLE_ADMIN})
	assert.False(t, d.Allowed)
	assert.Equal(t, "authentication required", d.Reason)
}

func TestModifyGate_Reasons(t *testing.T) {
	d := ModifyGate(Caller{ID: 2, Role: models.ROLE_USER}, nil)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "owner could not be resolved")

	d = ModifyGate(Caller{ID: 2, Role: models.ROLE_USER}, uintPtr(1))
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "owner or an admin")

	assert.True(t, ModifyGate(Caller{ID: 1, Role: models.ROLE_USER}, uintPtr(1)).Allowed)
}
