package services

import (
	"github.com/google/uuid"

	"github.com/edukita/edukita-backend/internal/types"
)

// Action names an operation subject to an authorization decision.
type Action string

const (
	ActionUserDelete    Action = "user.delete"
	ActionUserSetRole   Action = "user.set_role"
	ActionUserResetRole Action = "user.reset_role"
	ActionUserList      Action = "user.list"
	ActionContentMutate Action = "content.mutate"
	ActionWorkshopJoin  Action = "workshop.join"
)

type capability string

const (
	capSelf  capability = "self"  // requester is the target/owner user
	capOwner capability = "owner" // requester owns the content record
	capRoot  capability = "root"  // requester holds the root role
	capAny   capability = "any"   // any authenticated requester
)

// policyTable maps each action to the capabilities that allow it. Role
// strings are compared here once instead of ad hoc in every handler.
var policyTable = map[Action][]capability{
	ActionUserDelete:    {capSelf, capRoot},
	ActionUserSetRole:   {capRoot},
	ActionUserResetRole: {capRoot},
	ActionUserList:      {capRoot},
	ActionContentMutate: {capOwner},
	ActionWorkshopJoin:  {capAny},
}

// Allowed evaluates the policy table for an action. ownerID is the target
// user for user.* actions and the content owner for content.* actions.
func Allowed(action Action, requesterID uuid.UUID, requesterRole string, ownerID uuid.UUID) bool {
	caps, ok := policyTable[action]
	if !ok {
		return false
	}
	for _, c := range caps {
		switch c {
		case capAny:
			if requesterID != uuid.Nil {
				return true
			}
		case capSelf, capOwner:
			if requesterID != uuid.Nil && requesterID == ownerID {
				return true
			}
		case capRoot:
			if requesterRole == types.RoleRoot {
				return true
			}
		}
	}
	return false
}
