package database

import (
	"path/filepath"
	"testing"

	"github.com/nbazone/nbazone/config"
	"github.com/nbazone/nbazone/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.DatabaseConfig {
	cfg := config.GetDefaultDatabaseConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "nested", "test.db")
	return cfg
}

func TestInitDBSeedsRolesOnce(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, InitDB(cfg, false))
	require.NoError(t, CloseDB())

	// reopening must not duplicate the seeded rows
	require.NoError(t, InitDB(cfg, false))
	defer CloseDB()

	var roles []model.Role
	require.NoError(t, GetDB().Order("id").Find(&roles).Error)
	require.Len(t, roles, 2)
	assert.Equal(t, model.RoleUser, roles[0].RoleName)
	assert.Equal(t, model.RoleAdmin, roles[1].RoleName)

	assert.NoError(t, Checkpoint())
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Type = "oracle"
	_, err := Open(cfg, false)
	assert.Error(t, err)
}
