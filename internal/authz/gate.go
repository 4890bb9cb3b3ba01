// Package authz maps an authenticated principal to the operations it may
// perform. Services call the gate at the start of every guarded operation;
// the routing layer is not trusted to be the only check.
package authz

import (
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
)

// Role mirrors the account roles carried in the access token.
type Role string

const (
	RoleCitizen  Role = "CITIZEN"
	RoleOfficial Role = "OFFICIAL"
	RoleAdmin    Role = "ADMIN"
)

// Principal is the authenticated caller as resolved by the transport layer.
type Principal struct {
	AccountID id.UserID
	Role      Role
}

// Operation names an action subject to role rules.
type Operation string

const (
	OpSubmitRequest    Operation = "submit_request"
	OpViewOwnData      Operation = "view_own_data"
	OpMarkDocumentLost Operation = "mark_document_lost"
	OpProcessRequest   Operation = "process_request"
	OpManageCitizens   Operation = "manage_citizens"
	OpManageOfficials  Operation = "manage_officials"
)

var allowedRoles = map[Operation]map[Role]bool{
	OpSubmitRequest:    {RoleCitizen: true},
	OpViewOwnData:      {RoleCitizen: true},
	OpMarkDocumentLost: {RoleCitizen: true},
	OpProcessRequest:   {RoleOfficial: true, RoleAdmin: true},
	OpManageCitizens:   {RoleOfficial: true, RoleAdmin: true},
	OpManageOfficials:  {RoleAdmin: true},
}

// Gate enforces the role rules. It is stateless; it exists as a type so it
// can be passed into services as an explicit dependency.
type Gate struct{}

func NewGate() *Gate { return &Gate{} }

// Require returns a forbidden error when the principal's role does not allow
// the operation. Ownership checks stay with the owning service; the gate only
// rules on roles.
func (g *Gate) Require(p Principal, op Operation) error {
	roles, ok := allowedRoles[op]
	if !ok {
		return apperrors.Newf(apperrors.CodeForbidden, "unknown operation %q", op)
	}
	if !roles[p.Role] {
		return apperrors.Newf(apperrors.CodeForbidden, "role %s may not perform %s", p.Role, op)
	}
	return nil
}
