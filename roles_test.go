package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	auth "github.com/opencan/user-service"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  auth.UserRole
		ok    bool
	}{
		{name: "visitor", input: "VISITOR", want: auth.RoleVisitor, ok: true},
		{name: "proposer lowercase", input: "proposer", want: auth.RoleProposer, ok: true},
		{name: "admin mixed case", input: "Admin", want: auth.RoleAdmin, ok: true},
		{name: "padded", input: "  ADMIN  ", want: auth.RoleAdmin, ok: true},
		{name: "unknown", input: "SUPERUSER", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := auth.ParseRole(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, role)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range auth.GetAllRoles() {
		assert.True(t, auth.IsValidRole(role), role)
	}

	assert.False(t, auth.IsValidRole("MEMBER"))
	assert.False(t, auth.IsValidRole("visitor"), "role constants are uppercase")
}
