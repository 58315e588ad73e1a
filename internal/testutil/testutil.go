// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gogofit/backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var seq atomic.Int64

// NewDB opens a private in-memory sqlite database with models migrated.
// The database is closed when the test ends.
func NewDB(t testing.TB, models ...any) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("sqlite:file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	d, err := db.Open(dsn, db.Options{
		MaxOpenConns: 1,
		Logger:       gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	if len(models) > 0 {
		require.NoError(t, d.AutoMigrate(models...))
	}

	t.Cleanup(func() { _ = db.Close(d) })
	return d
}
