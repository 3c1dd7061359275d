package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/storefront-next/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func TestBuiltinRolesGateOrderStatus(t *testing.T) {
	svc := setupAuthzServiceTest(t)

	cases := []struct {
		roles  []string
		obj    string
		act    string
		expect bool
	}{
		{[]string{constants.RoleAdmin}, constants.PermObjectOrderStatus, constants.PermActionUpdate, true},
		{[]string{constants.RoleSeller}, constants.PermObjectOrderStatus, constants.PermActionUpdate, true},
		{[]string{constants.RoleCustomer}, constants.PermObjectOrderStatus, constants.PermActionUpdate, false},
		{nil, constants.PermObjectOrderStatus, constants.PermActionUpdate, false},
		{[]string{constants.RoleSeller}, constants.PermObjectOrder, constants.PermActionDelete, false},
		{[]string{constants.RoleAdmin}, constants.PermObjectOrder, constants.PermActionDelete, true},
		{[]string{constants.RoleCustomer, constants.RoleSeller}, constants.PermObjectOrderList, "READ", true},
	}
	for _, tc := range cases {
		allowed, err := svc.EnforceRoles(tc.roles, tc.obj, tc.act)
		if err != nil {
			t.Fatalf("enforce %v %s %s failed: %v", tc.roles, tc.obj, tc.act, err)
		}
		if allowed != tc.expect {
			t.Fatalf("roles=%v obj=%s act=%s expected %v got %v", tc.roles, tc.obj, tc.act, tc.expect, allowed)
		}
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	before, err := svc.PoliciesForRoles([]string{constants.RoleAdmin, constants.RoleSeller})
	if err != nil {
		t.Fatalf("policies failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	after, err := svc.PoliciesForRoles([]string{constants.RoleAdmin, constants.RoleSeller})
	if err != nil {
		t.Fatalf("policies failed: %v", err)
	}
	if len(before) == 0 || len(after) != len(before) {
		t.Fatalf("bootstrap should not duplicate policies: before=%d after=%d", len(before), len(after))
	}
}

func TestEnsureRoleRejectsReservedAndEmpty(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if _, err := svc.EnsureRole(" "); err == nil {
		t.Fatalf("empty role should fail")
	}
	if _, err := svc.EnsureRole("__anchor__"); err == nil {
		t.Fatalf("reserved role should fail")
	}
	role, err := svc.EnsureRole("ROLE_SUPPORT")
	if err != nil || role != "role:ROLE_SUPPORT" {
		t.Fatalf("unexpected role %q err=%v", role, err)
	}
	if ok, _ := svc.EnforceRoles([]string{"ROLE_SUPPORT"}, constants.PermObjectOrderStatus, constants.PermActionUpdate); ok {
		t.Fatalf("new role should have no grants")
	}
}

func TestPoliciesForRolesIncludesInherited(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	policies, err := svc.PoliciesForRoles([]string{constants.RoleAdmin})
	if err != nil {
		t.Fatalf("policies failed: %v", err)
	}
	seen := map[string]bool{}
	for _, p := range policies {
		seen[p.Object+":"+p.Action] = true
	}
	for _, want := range []string{"order:delete", "order_list:read", "order_status:update"} {
		if !seen[want] {
			t.Fatalf("expected %s in %v", want, policies)
		}
	}
}
