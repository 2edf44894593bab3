package testutil

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"

	"github.com/alexanderramin/tasksync/internal/db"
)

// ErrInjected is returned by FailOnNthExecUoW when Err is nil.
var ErrInjected = errors.New("injected exec failure")

// FailOnNthExecUoW runs transactions through Inner but fails the FailOn-th
// write (1-based, counted per transaction). Reads pass through.
type FailOnNthExecUoW struct {
	Inner  db.UnitOfWork
	FailOn int32
	Err    error

	execs atomic.Int32
}

// Execs reports how many writes were attempted across all transactions.
func (u *FailOnNthExecUoW) Execs() int {
	return int(u.execs.Load())
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	injected := u.Err
	if injected == nil {
		injected = ErrInjected
	}
	return u.Inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failOnNthExec{DBTX: tx, uow: u, err: injected})
	})
}

type failOnNthExec struct {
	db.DBTX
	uow   *FailOnNthExecUoW
	count int32
	err   error
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.count++
	f.uow.execs.Add(1)
	if f.count == f.uow.FailOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
