package repositories

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/maxaizer/club-portal/internal/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"testing"
)

// newTestDb opens a private in-memory database. One connection serializes transactions like a real server would.
func newTestDb(t *testing.T) *DbContext {
	t.Helper()

	dbCtx, err := NewDbContext(config.DBConfig{
		Driver:           config.DriverSQLite,
		ConnectionString: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns:     1,
		MaxIdleConns:     1,
	})
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())

	t.Cleanup(func() {
		_ = dbCtx.Close()
	})
	return dbCtx
}

// interleaveBeforeUpdate runs statement inside the transaction of the next UPDATE on table, right before it.
// It stands in for a rival request committing between a read and a write, which a single connection can't produce.
// The returned flag reports whether the statement ran.
func interleaveBeforeUpdate(t *testing.T, db *gorm.DB, table, statement string, args ...any) *bool {
	t.Helper()

	ran := false
	err := db.Callback().Update().Before("gorm:update").Register("test:interleave_"+table, func(tx *gorm.DB) {
		if ran || tx.Statement.Table != table {
			return
		}
		ran = true
		tx.Session(&gorm.Session{NewDB: true}).Exec(statement, args...)
	})
	require.NoError(t, err)
	return &ran
}
