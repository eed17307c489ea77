package simpletxmanager

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Стаб-драйвер: COMMIT возвращает подготовленные ошибки по очереди.
// Нужен, потому что TransactionManager работает с конкретным *sql.DB.

type stubState struct {
	commitErrs []error
	begun      int
}

type stubDriver struct {
	state *stubState
}

func (d *stubDriver) Open(name string) (driver.Conn, error) {
	return &stubConn{state: d.state}, nil
}

type stubConn struct {
	state *stubState
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, driver.ErrSkip
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *stubConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	idx := c.state.begun
	c.state.begun++

	var commitErr error
	if idx < len(c.state.commitErrs) {
		commitErr = c.state.commitErrs[idx]
	}
	return &stubTx{commitErr: commitErr}, nil
}

type stubTx struct {
	commitErr error
}

func (t *stubTx) Commit() error   { return t.commitErr }
func (t *stubTx) Rollback() error { return nil }

func openStubDB(t *testing.T, name string, state *stubState) *sql.DB {
	t.Helper()

	sql.Register(name, &stubDriver{state: state})
	db, err := sql.Open(name, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Пул не должен переоткрывать соединения между попытками
	db.SetMaxOpenConns(1)
	return db
}

func serializationErr() error {
	return &pq.Error{Code: "40001", Message: "could not serialize access due to concurrent update"}
}

func TestDoSerializable_RetriesCommitSerializationFailure(t *testing.T) {
	state := &stubState{commitErrs: []error{serializationErr(), nil}}
	m := NewTransactionManager(openStubDB(t, "stub-retry", state))

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, state.begun)
}

func TestDoSerializable_GivesUpAfterMaxRetries(t *testing.T) {
	state := &stubState{commitErrs: []error{
		serializationErr(), serializationErr(), serializationErr(),
	}}
	m := NewTransactionManager(openStubDB(t, "stub-give-up", state))

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransaction)
	assert.Equal(t, maxSerializableRetries, calls)
	assert.True(t, isSerializationFailure(err))
}

func TestDoSerializable_DoesNotRetryFnErrors(t *testing.T) {
	state := &stubState{}
	m := NewTransactionManager(openStubDB(t, "stub-fn-error", state))

	wantErr := assert.AnError
	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}
