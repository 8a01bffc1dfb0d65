package db

import (
	"bytes"
	"fmt"
	"log"
	"testing"

	"github.com/diewo77/go-repairs/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	return conn
}

func TestSeedIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	opts := SeedOptions{AdminEmail: "admin@shop.test", AdminPassword: "s3cret"}
	require.NoError(t, Seed(conn, opts))
	require.NoError(t, Seed(conn, opts))

	var permCount, profileCount, userCount int64
	conn.Model(&models.Permission{}).Count(&permCount)
	conn.Model(&models.Profile{}).Count(&profileCount)
	conn.Model(&models.User{}).Count(&userCount)
	assert.Equal(t, int64(len(permissions)), permCount)
	assert.Equal(t, int64(4), profileCount)
	assert.Equal(t, int64(1), userCount)
}

func TestSeedProfilesPermissions(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, SeedProfiles(conn))

	var tech models.Profile
	require.NoError(t, conn.Preload("Permissions").Where("name = ?", "technician").First(&tech).Error)
	codes := map[string]bool{}
	for _, p := range tech.Permissions {
		codes[p.Code()] = true
	}
	assert.True(t, codes["repair:work"])
	assert.False(t, codes["shop:staff"])
	assert.False(t, codes["payment:create"])
}

func TestSeedUserHashesPassword(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, SeedProfiles(conn))
	u, err := SeedUser(conn, "tech@shop.test", "Ama", "pa55", "technician")
	require.NoError(t, err)
	require.NotNil(t, u.ProfileID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("pa55")))

	_, err = SeedUser(conn, "x@shop.test", "X", "pw", "missing")
	assert.Error(t, err)
}

func TestSeedFreshDatabaseLogsNoErrors(t *testing.T) {
	var buf bytes.Buffer
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.New(log.New(&buf, "", 0), logger.Config{LogLevel: logger.Error}),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))

	require.NoError(t, Seed(conn, SeedOptions{AdminEmail: "admin@shop.test", AdminPassword: "s3cret"}))
	_, err = SeedUser(conn, "tech@shop.test", "Ama", "pa55", "technician")
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "record not found")
}
