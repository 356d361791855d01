package utils

import (
	"testing"

	"community-bot/model"

	"github.com/stretchr/testify/assert"
)

func TestCheckPermission(t *testing.T) {
	cfg := &model.Config{
		ModeratorRoleIDs: []string{"10"},
		AdminRoleIDs:     []string{"20"},
	}

	assert.Equal(t, AdminPermission, CheckPermission([]string{"10", "20"}, cfg))
	assert.Equal(t, ModeratorPermission, CheckPermission([]string{"5", "10"}, cfg))
	assert.Equal(t, UserPermission, CheckPermission([]string{"5"}, cfg))
	assert.Equal(t, UserPermission, CheckPermission(nil, cfg))

	assert.True(t, HasPermission([]string{"20"}, cfg, ModeratorPermission))
	assert.False(t, HasPermission([]string{"10"}, cfg, AdminPermission))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "äöü", Truncate("äöü", 3))
}
