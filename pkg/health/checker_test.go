package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	return f.err
}

func TestDatabaseChecker_NilDB(t *testing.T) {
	assert.EqualError(t, DatabaseChecker(nil)(), "database not configured")
}

func TestDatabaseChecker_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	check := DatabaseChecker(db)
	assert.NoError(t, check())
	assert.Error(t, check())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPingChecker(t *testing.T) {
	assert.NoError(t, PingChecker(fakePinger{})())
	assert.EqualError(t, PingChecker(fakePinger{err: errors.New("down")})(), "down")
}

func TestContextChecker_AppliesTimeout(t *testing.T) {
	err := ContextChecker(func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(defaultTimeout), deadline, time.Second)
		return nil
	})()
	assert.NoError(t, err)
}
