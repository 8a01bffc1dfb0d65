package gate_test

import (
	"testing"

	"github.com/diewo77/go-repairs/internal/gate"
)

func TestPermission_NewPermission(t *testing.T) {
	perm := gate.NewPermission("repair", gate.ActionAssign)
	if perm != "repair:assign" {
		t.Errorf("expected 'repair:assign', got '%s'", perm)
	}
}

func TestPermission_Parse(t *testing.T) {
	res, act := gate.Permission("payment:view").Parse()
	if res != "payment" {
		t.Errorf("expected resource 'payment', got '%s'", res)
	}
	if act != gate.ActionView {
		t.Errorf("expected action 'view', got '%s'", act)
	}
}

func TestPermission_Parse_Invalid(t *testing.T) {
	res, act := gate.Permission("invalid").Parse()
	if res != "" || act != "" {
		t.Errorf("expected empty strings, got '%s' and '%s'", res, act)
	}
}

func TestPermission_Matches(t *testing.T) {
	cases := []struct {
		granted   gate.Permission
		requested gate.Permission
		want      bool
	}{
		{"repair:work", "repair:work", true},
		{"repair:work", "repair:update", false},
		{"repair:work", "repair_log:work", false},
		{"repair:*", "repair:assign", true},
		{"repair:*", "receipt:create", false},
		{gate.PermissionSuperAdmin, "shop:staff", true},
		{"invalid", "invalid", true},
		{"invalid", "other", false},
	}
	for _, tc := range cases {
		t.Run(string(tc.granted)+"/"+string(tc.requested), func(t *testing.T) {
			if got := tc.granted.Matches(tc.requested); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPermissionSet_AllowsAndSorted(t *testing.T) {
	s := gate.NewPermissionSet("receipt:*", "payment:create", "repair:view")
	if !s.Allows("receipt:view") {
		t.Error("receipt:* should allow receipt:view")
	}
	if s.Allows("payment:view") {
		t.Error("payment:create should not allow payment:view")
	}
	got := s.Sorted()
	want := []gate.Permission{"payment:create", "receipt:*", "repair:view"}
	if len(got) != len(want) {
		t.Fatalf("expected %d permissions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
