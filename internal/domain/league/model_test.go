package league

import "testing"

func TestCanAdminister(t *testing.T) {
	l := League{ID: "l1", Name: "Paddock", Season: 2026, OwnerUserID: "owner"}

	tests := []struct {
		name   string
		member Member
		found  bool
		want   bool
	}{
		{name: "owner without member row", member: Member{UserID: "owner"}, want: true},
		{name: "admin member", member: Member{UserID: "u2", Role: RoleAdmin}, found: true, want: true},
		{name: "plain member", member: Member{UserID: "u3", Role: RoleMember}, found: true, want: false},
		{name: "stranger", member: Member{UserID: "u4"}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanAdminister(l, tc.member, tc.found); got != tc.want {
				t.Fatalf("CanAdminister = %v, want %v", got, tc.want)
			}
		})
	}
}
