package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/config"
	"github.com/pageza/recipehub/backend/internal/database"
	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/testhelpers"
)

func TestNewSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, SQLitePath: t.TempDir() + "/test.db"}

	db, err := database.New(cfg, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.RunMigrations(db, logging.Nop()))
	assert.True(t, db.Migrator().HasTable(&models.Recipe{}))
	assert.True(t, db.Migrator().HasTable("recipe_favorites"))
	assert.NoError(t, database.HealthCheck(context.Background(), db))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := database.New(&config.Config{DBDriver: "oracle"}, logging.Nop())
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, database.IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, database.IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, database.IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, database.IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, database.IsUniqueViolation(nil))
}

func TestUniqueEmailOnSQLite(t *testing.T) {
	db := testhelpers.SetupSQLite(t)

	require.NoError(t, db.Create(&models.User{Email: "a@example.com", Username: "a", PasswordHash: "x"}).Error)
	err := db.Create(&models.User{Email: "a@example.com", Username: "b", PasswordHash: "x"}).Error
	assert.True(t, database.IsUniqueViolation(err))
}

func TestPostgresUniqueViolation(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	require.NoError(t, db.Create(&models.User{Email: "a@example.com", Username: "a", PasswordHash: "x"}).Error)
	err := db.Create(&models.User{Email: "a@example.com", Username: "b", PasswordHash: "x"}).Error
	assert.True(t, database.IsUniqueViolation(err))
}
