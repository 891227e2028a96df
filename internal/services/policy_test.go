package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/edukita/edukita-backend/internal/types"
)

func TestAllowed(t *testing.T) {
	self := uuid.New()
	other := uuid.New()

	cases := []struct {
		name      string
		action    Action
		requester uuid.UUID
		role      string
		owner     uuid.UUID
		want      bool
	}{
		{"delete self", ActionUserDelete, self, types.RoleUser, self, true},
		{"delete other as user", ActionUserDelete, self, types.RoleUser, other, false},
		{"delete other as admin", ActionUserDelete, self, types.RoleAdmin, other, false},
		{"delete other as root", ActionUserDelete, self, types.RoleRoot, other, true},
		{"set role as root", ActionUserSetRole, self, types.RoleRoot, other, true},
		{"set role as admin", ActionUserSetRole, self, types.RoleAdmin, other, false},
		{"set role on self as user", ActionUserSetRole, self, types.RoleUser, self, false},
		{"reset role as root", ActionUserResetRole, self, types.RoleRoot, other, true},
		{"reset role as user", ActionUserResetRole, self, types.RoleUser, other, false},
		{"list users as root", ActionUserList, self, types.RoleRoot, uuid.Nil, true},
		{"list users as admin", ActionUserList, self, types.RoleAdmin, uuid.Nil, false},
		{"mutate own content", ActionContentMutate, self, types.RoleUser, self, true},
		{"mutate foreign content as admin", ActionContentMutate, self, types.RoleAdmin, other, false},
		{"mutate foreign content as root", ActionContentMutate, self, types.RoleRoot, other, false},
		{"join workshop authenticated", ActionWorkshopJoin, self, types.RoleUser, uuid.Nil, true},
		{"join workshop unauthenticated", ActionWorkshopJoin, uuid.Nil, "", uuid.Nil, false},
		{"unknown action", Action("nope"), self, types.RoleRoot, self, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Allowed(tc.action, tc.requester, tc.role, tc.owner)
			if got != tc.want {
				t.Fatalf("Allowed(%s): want=%t got=%t", tc.action, tc.want, got)
			}
		})
	}
}
