package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
)

func TestGateRequire(t *testing.T) {
	gate := NewGate()

	tests := []struct {
		name    string
		role    Role
		op      Operation
		allowed bool
	}{
		{"citizen submits request", RoleCitizen, OpSubmitRequest, true},
		{"citizen views own data", RoleCitizen, OpViewOwnData, true},
		{"citizen marks document lost", RoleCitizen, OpMarkDocumentLost, true},
		{"citizen may not process requests", RoleCitizen, OpProcessRequest, false},
		{"citizen may not manage citizens", RoleCitizen, OpManageCitizens, false},
		{"official processes requests", RoleOfficial, OpProcessRequest, true},
		{"official manages citizens", RoleOfficial, OpManageCitizens, true},
		{"official may not manage officials", RoleOfficial, OpManageOfficials, false},
		{"official may not submit requests", RoleOfficial, OpSubmitRequest, false},
		{"admin processes requests", RoleAdmin, OpProcessRequest, true},
		{"admin manages officials", RoleAdmin, OpManageOfficials, true},
		{"admin may not submit requests", RoleAdmin, OpSubmitRequest, false},
		{"empty role is denied everything", Role(""), OpViewOwnData, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Principal{AccountID: id.NewUserID(), Role: tt.role}
			err := gate.Require(p, tt.op)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
			}
		})
	}
}

func TestGateUnknownOperation(t *testing.T) {
	gate := NewGate()
	p := Principal{AccountID: id.NewUserID(), Role: RoleAdmin}
	err := gate.Require(p, Operation("drop_tables"))
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
}
