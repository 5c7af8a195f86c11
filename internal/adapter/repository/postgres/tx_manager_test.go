package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkosiv/shardpay/internal/domain"
)

func TestTxManagerCommit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := NewTxManager(mock).Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, tx.Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManagerCommitMapsUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	tx, err := NewTxManager(mock).Begin(context.Background())
	require.NoError(t, err)

	// Deferred constraint checks surface conflicts at commit time; they
	// must map the same way as insert-time conflicts.
	assert.ErrorIs(t, tx.Commit(context.Background()), domain.ErrDuplicateKey)
}

func TestTxManagerRollback(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := NewTxManager(mock).Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, tx.Rollback(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
