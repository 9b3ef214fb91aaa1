package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fith/sugar/internal/models"

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
	return svc
}

func TestEnforceUserWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("editor", "/admin/categories/:id", "PUT"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetUserRoles(1, []string{"editor"}); err != nil {
		t.Fatalf("set user roles failed: %v", err)
	}

	allow, err := svc.EnforceUser(1, "/api/v1/admin/categories/42", "put")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceUser(1, "/api/v1/admin/categories/42", "DELETE")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetUserRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("editor", "/admin/categories", "POST"); err != nil {
		t.Fatalf("grant editor policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("auditor", "/admin/users", "GET"); err != nil {
		t.Fatalf("grant auditor policy failed: %v", err)
	}

	if err := svc.SetUserRoles(2, []string{"editor"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetUserRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:editor" {
		t.Fatalf("roles want [role:editor], got=%v", roles)
	}

	if err := svc.SetUserRoles(2, []string{"auditor"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetUserRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:auditor" {
		t.Fatalf("roles want [role:auditor], got=%v", roles)
	}

	allow, err := svc.EnforceUser(2, "/admin/categories", "POST")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}

	allow, err = svc.EnforceUser(2, "/admin/users", "GET")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}

	policies, err := svc.GetUserPolicies(2)
	if err != nil {
		t.Fatalf("get user policies failed: %v", err)
	}
	if len(policies) != 1 || policies[0].Object != "/admin/users" {
		t.Fatalf("unexpected policies: %+v", policies)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/discussions/:id", want: "/admin/discussions/:id"},
		{in: "/admin/discussions/:id", want: "/admin/discussions/:id"},
		{in: "admin/posts", want: "/admin/posts"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap should be idempotent: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:moderator": true,
		"role:admin":     true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetUserRoles(3, []string{"moderator"}); err != nil {
		t.Fatalf("set user roles failed: %v", err)
	}
	allow, err := svc.EnforceUser(3, "/api/v1/admin/discussions/7/sticky", "PUT")
	if err != nil {
		t.Fatalf("enforce moderator sticky failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected moderator to pin discussions")
	}
	allow, err = svc.EnforceUser(3, "/api/v1/admin/categories", "POST")
	if err != nil {
		t.Fatalf("enforce moderator category failed: %v", err)
	}
	if allow {
		t.Fatalf("expected moderator to be denied category writes")
	}

	if err := svc.SetUserRoles(4, []string{"admin"}); err != nil {
		t.Fatalf("set user roles failed: %v", err)
	}
	allow, err = svc.EnforceUser(4, "/api/v1/admin/categories/1/position", "PUT")
	if err != nil {
		t.Fatalf("enforce admin failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected admin role to reach every admin route")
	}
}

func TestDeleteRoleRemovesGrants(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("temp", "/admin/users", "GET"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := svc.SetUserRoles(5, []string{"temp"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	if err := svc.DeleteRole("temp"); err != nil {
		t.Fatalf("delete role failed: %v", err)
	}
	allow, err := svc.EnforceUser(5, "/admin/users", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("deleted role should not grant access")
	}
	if err := svc.RevokeRolePolicy("temp", "/admin/users", "GET"); err != nil {
		t.Fatalf("revoke on deleted role should be a no-op: %v", err)
	}
}

func TestBuiltinRolesCannotBeDeleted(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if err := svc.DeleteRole("moderator"); !errors.Is(err, ErrBuiltinRole) {
		t.Fatalf("delete moderator want ErrBuiltinRole got %v", err)
	}
	if err := svc.DeleteRole("role:admin"); !errors.Is(err, ErrBuiltinRole) {
		t.Fatalf("delete admin want ErrBuiltinRole got %v", err)
	}
}

func TestSetUserRolesKeepsRolesOnInvalidInput(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetUserRoles(6, []string{"moderator"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	if err := svc.SetUserRoles(6, []string{"editor", " "}); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("blank role want ErrRoleRequired got %v", err)
	}
	if err := svc.SetUserRoles(6, []string{"__anchor__"}); !errors.Is(err, ErrReservedRole) {
		t.Fatalf("anchor role want ErrReservedRole got %v", err)
	}
	roles, err := svc.GetUserRoles(6)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:moderator" {
		t.Fatalf("roles should be untouched, got %v", roles)
	}
}

func TestUsersWithRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	for _, id := range []uint{9, 7} {
		if err := svc.SetUserRoles(id, []string{"moderator"}); err != nil {
			t.Fatalf("set roles failed: %v", err)
		}
	}
	ids, err := svc.UsersWithRole("moderator")
	if err != nil {
		t.Fatalf("users with role failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 9 {
		t.Fatalf("members want [7 9] got %v", ids)
	}
}

func TestAuthorizeDecisions(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if err := svc.SetUserRoles(2, []string{"moderator"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}

	cases := []struct {
		name   string
		user   *models.User
		path   string
		method string
		want   Decision
	}{
		{"admin flag", &models.User{ID: 1, Admin: true}, "/api/v1/admin/categories", "POST", DecisionAdmin},
		{"moderator pin", &models.User{ID: 2}, "/api/v1/admin/discussions/:id/sticky", "PUT", DecisionRole},
		{"moderator category", &models.User{ID: 2}, "/api/v1/admin/categories", "POST", DecisionDeny},
		{"banned moderator", &models.User{ID: 2, Banned: true}, "/api/v1/admin/discussions/:id/sticky", "PUT", DecisionBanned},
		{"member", &models.User{ID: 3}, "/api/v1/admin/users", "GET", DecisionDeny},
	}
	for _, tc := range cases {
		got, err := svc.Authorize(tc.user, tc.path, tc.method)
		if err != nil {
			t.Fatalf("%s: authorize failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, got)
		}
	}

	if _, err := svc.Authorize(nil, "/admin/users", "GET"); !errors.Is(err, ErrUserRequired) {
		t.Fatalf("nil user want ErrUserRequired got %v", err)
	}
	var unavailable *Service
	if got, _ := unavailable.Authorize(&models.User{ID: 1, Admin: true}, "/admin/users", "GET"); got != DecisionAdmin {
		t.Fatalf("admin flag should not need the enforcer, got %v", got)
	}
	if _, err := unavailable.Authorize(&models.User{ID: 2}, "/admin/users", "GET"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("missing enforcer want ErrUnavailable got %v", err)
	}
}
