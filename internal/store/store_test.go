package store

import (
	"path/filepath"
	"testing"

	"gamine/blog-api/model"
	"gamine/blog-api/pkg/security"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.Post{}))

	return db
}

// testArgon uses deliberately weak parameters so the suite stays fast
func testArgon() *security.ArgonHash {
	return &security.ArgonHash{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestUsers(t *testing.T) (*Users, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	return NewUsers(db, testArgon()), db
}
