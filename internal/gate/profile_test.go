package gate_test

import (
	"context"
	"testing"

	"github.com/diewo77/go-repairs/internal/gate"
)

func TestStaticProfile(t *testing.T) {
	p := gate.NewStaticProfile(3, "technician", "repair:work", "repair_log:create")
	if p.ID() != 3 || p.Name() != "technician" {
		t.Errorf("unexpected identity %d/%s", p.ID(), p.Name())
	}
	if !p.HasPermission("repair:work") {
		t.Error("expected repair:work")
	}
	if p.HasPermission("shop:staff") {
		t.Error("technician must not be staff")
	}
	if len(p.Permissions()) != 2 {
		t.Errorf("expected 2 permissions, got %d", len(p.Permissions()))
	}
}

func TestStaticResolver_Unknown(t *testing.T) {
	r := gate.NewStaticResolver[uint]()
	p, err := r.Resolve(context.Background(), 9)
	if err != nil || p != nil {
		t.Errorf("expected nil profile and error, got %v, %v", p, err)
	}
}
