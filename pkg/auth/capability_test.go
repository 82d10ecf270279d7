package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestPrincipal_Can(t *testing.T) {
	allCaps := []Capability{
		CapRead, CapOrderWrite, CapOrderTransition,
		CapPurchaseWrite, CapPurchaseReceive, CapStockAdjust, CapCatalogWrite,
	}

	granted := map[Role]map[Capability]bool{
		RoleAdmin: {
			CapRead: true, CapOrderWrite: true, CapOrderTransition: true,
			CapPurchaseWrite: true, CapPurchaseReceive: true,
			CapStockAdjust: true, CapCatalogWrite: true,
		},
		RoleManager: {
			CapRead: true, CapOrderWrite: true, CapOrderTransition: true,
			CapPurchaseWrite: true, CapPurchaseReceive: true, CapStockAdjust: true,
		},
		RoleClerk: {
			CapRead: true, CapOrderWrite: true, CapOrderTransition: true,
			CapPurchaseReceive: true,
		},
		RoleViewer: {
			CapRead: true,
		},
	}

	for role, caps := range granted {
		t.Run(string(role), func(t *testing.T) {
			p := Principal{UserID: uuid.New(), OrgID: uuid.New(), Role: role}
			for _, c := range allCaps {
				if got := p.Can(c); got != caps[c] {
					t.Fatalf("Can(%s) for %s = %v, want %v", c, role, got, caps[c])
				}
			}
		})
	}
}

func TestPrincipal_Can_UnknownRole(t *testing.T) {
	p := Principal{UserID: uuid.New(), OrgID: uuid.New(), Role: Role("superuser")}
	if p.Can(CapRead) {
		t.Fatal("unknown role must grant nothing")
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"admin", "manager", "clerk", "viewer"} {
		if _, ok := ParseRole(s); !ok {
			t.Fatalf("expected %q to parse", s)
		}
	}
	for _, s := range []string{"", "Admin", "root"} {
		if _, ok := ParseRole(s); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestPrincipalFromCtx(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		want := Principal{UserID: uuid.New(), OrgID: uuid.New(), Role: RoleManager}
		ctx := WithPrincipal(context.Background(), want)
		got, err := PrincipalFromCtx(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("missing principal", func(t *testing.T) {
		_, err := PrincipalFromCtx(context.Background())
		if !errors.Is(err, ErrNoPrincipal) {
			t.Fatalf("expected ErrNoPrincipal, got %v", err)
		}
	})

	t.Run("principal without org scope is rejected", func(t *testing.T) {
		ctx := WithPrincipal(context.Background(), Principal{UserID: uuid.New(), Role: RoleAdmin})
		_, err := PrincipalFromCtx(ctx)
		if !errors.Is(err, ErrNoPrincipal) {
			t.Fatalf("expected ErrNoPrincipal, got %v", err)
		}
	})
}
