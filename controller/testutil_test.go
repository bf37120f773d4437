package controller

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/linkfolio/linkfolio-backend/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database with shared cache keeps the whole pool on
	// one database while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Link{}, &models.Click{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		DisplayName:  username,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestLink(t *testing.T, db *gorm.DB, user *models.User, title string, order int) *models.Link {
	t.Helper()

	link := &models.Link{
		UserID: user.ID,
		Title:  title,
		URL:    "https://example.com/" + title,
		Order:  order,
		Active: true,
	}
	require.NoError(t, db.Create(link).Error)
	return link
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
