package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdk/BMS-SchedulingService/pkg/dbmetrics"
)

type fakeTx struct {
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

// fakeBeginner отдаёт заранее подготовленные транзакции по очереди
type fakeBeginner struct {
	txs   []*fakeTx
	begun int
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	if b.begun >= len(b.txs) {
		return nil, errors.New("unexpected extra transaction")
	}
	tx := b.txs[b.begun]
	b.begun++
	return tx, nil
}

func serializationErr() error {
	return &pq.Error{Code: "40001", Message: "could not serialize access due to concurrent update"}
}

func TestDoSerializable_RetriesCommitSerializationFailure(t *testing.T) {
	// Первый COMMIT падает с 40001, второй проходит
	db := &fakeBeginner{txs: []*fakeTx{
		{commitErr: serializationErr()},
		{},
	}}
	m := NewTransactionManager(db)

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, db.begun)
	assert.True(t, db.txs[1].committed)
}

func TestDoSerializable_RetriesWrappedQueryFailure(t *testing.T) {
	// Конфликт прилетает из запроса внутри fn, обёрнутый в стиле репозитория
	db := &fakeBeginner{txs: []*fakeTx{{}, {}}}
	m := NewTransactionManager(db)

	errQuery := errors.New("storage: failed to execute query")
	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return fmt.Errorf("%w: GetByBusinessWithFilter - execute query: %w", errQuery, serializationErr())
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, db.txs[0].rolledBack)
	assert.True(t, db.txs[1].committed)
}

func TestDoSerializable_GivesUpAfterMaxRetries(t *testing.T) {
	db := &fakeBeginner{txs: []*fakeTx{
		{commitErr: serializationErr()},
		{commitErr: serializationErr()},
		{commitErr: serializationErr()},
	}}
	m := NewTransactionManager(db)

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, maxSerializableRetries, calls)
	assert.ErrorIs(t, err, ErrTransaction)

	// Исходная ошибка драйвера остаётся в цепочке
	var pqErr *pq.Error
	require.True(t, errors.As(err, &pqErr))
	assert.Equal(t, serializationFailureCode, string(pqErr.Code))
}

func TestDoSerializable_DoesNotRetryOtherErrors(t *testing.T) {
	t.Run("plain fn error", func(t *testing.T) {
		db := &fakeBeginner{txs: []*fakeTx{{}}}
		m := NewTransactionManager(db)

		wantErr := errors.New("slot is already taken")
		calls := 0
		err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
			calls++
			return wantErr
		})

		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, 1, calls)
		assert.True(t, db.txs[0].rolledBack)
	})

	t.Run("non-serialization commit error", func(t *testing.T) {
		db := &fakeBeginner{txs: []*fakeTx{
			{commitErr: &pq.Error{Code: "53300", Message: "too many connections"}},
		}}
		m := NewTransactionManager(db)

		calls := 0
		err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
			calls++
			return nil
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransaction)
		assert.Equal(t, 1, calls)
	})
}

func TestIsSerializationFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "bare 40001", err: serializationErr(), want: true},
		{name: "wrapped by commit", err: fmt.Errorf("%w: commit: %w", ErrTransaction, serializationErr()), want: true},
		{
			name: "double-wrapped by repository and usecase",
			err: fmt.Errorf("internal error: %w",
				fmt.Errorf("storage error: %w", serializationErr())),
			want: true,
		},
		{name: "other pq code", err: &pq.Error{Code: "23505"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isSerializationFailure(tt.err))
		})
	}
}

func TestRun_ReusesOuterTransaction(t *testing.T) {
	db := &fakeBeginner{txs: []*fakeTx{{}}}
	m := NewTransactionManager(db)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		// Вложенный вызов не должен начинать вторую транзакцию
		return m.DoSerializable(ctx, func(ctx context.Context) error { return nil })
	})

	require.NoError(t, err)
	assert.Equal(t, 1, db.begun)
}
