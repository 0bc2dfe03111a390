package account

import (
	"testing"

	"github.com/clinic/clinic/internal/platform/auth"
)

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Foo@Bar.COM\t"); got != "foo@bar.com" {
		t.Errorf("expected foo@bar.com, got %q", got)
	}
}

func TestNewAccount(t *testing.T) {
	a := NewAccount(RegisterRequest{
		Name: " Dr. A ", Email: "A@B.C", Phone: " 1 ", Role: auth.RoleDoctor, Specialization: "  ",
	}, "hash")
	if a.Name != "Dr. A" || a.Email != "a@b.c" || a.Phone != "1" {
		t.Errorf("expected trimmed fields, got %+v", a)
	}
	if a.Specialization != nil {
		t.Error("blank specialization should not be stored")
	}
	if !a.IsDoctor() {
		t.Error("expected doctor")
	}
}
