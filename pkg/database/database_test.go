package database

import (
	"fmt"
	"testing"

	"rental-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "rental.db?_foreign_keys=1", withForeignKeys("rental.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=1", withForeignKeys("file:x?mode=memory"))
	assert.Equal(t, "a.db?_fk=1", withForeignKeys("a.db?_fk=1"))
}

func TestOpenSQLiteMigratesAllTables(t *testing.T) {
	db, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)

	for _, table := range []string{"admins", "tenants", "payments", "complaints"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestInitDBWithSQLite(t *testing.T) {
	cfg := &config.Config{DB: config.DBConfig{
		Driver:   "sqlite",
		Path:     fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		LogLevel: logger.Silent,
	}}

	db, err := InitDB(cfg)
	require.NoError(t, err)
	assert.Same(t, db, GetDB())
}

func TestInitDBUnknownDriver(t *testing.T) {
	_, err := InitDB(&config.Config{DB: config.DBConfig{Driver: "oracle"}})
	assert.Error(t, err)
}
