package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

func TestRequireAdmin(t *testing.T) {
	admin := &model.Identity{ID: "admin-1", Role: model.RoleAdmin}
	student := &model.Identity{ID: "s1", Role: model.RoleStudent}

	assert.NoError(t, RequireAdmin(admin))
	assert.ErrorIs(t, RequireAdmin(student), model.ErrForbidden)
	assert.ErrorIs(t, RequireAdmin(nil), model.ErrInvalidSession)
	assert.ErrorIs(t, RequireAdmin(&model.Identity{ID: "x", Role: "hr"}), model.ErrForbidden)
}

func TestRequireSelfOrAdmin(t *testing.T) {
	admin := &model.Identity{ID: "admin-1", Role: model.RoleAdmin}
	student := &model.Identity{ID: "s1", Role: model.RoleStudent}

	assert.NoError(t, RequireSelfOrAdmin(student, "s1"))
	assert.NoError(t, RequireSelfOrAdmin(admin, "s1"))
	assert.ErrorIs(t, RequireSelfOrAdmin(student, "s2"), model.ErrForbidden)
	assert.ErrorIs(t, RequireSelfOrAdmin(nil, "s1"), model.ErrInvalidSession)
}
