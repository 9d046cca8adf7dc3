package database

import (
	"context"
	"errors"
)

// ErrNoTransaction is returned when a unit of work is finished on a context
// that never began one.
var ErrNoTransaction = errors.New("no transaction in context")

type txKey struct{}

// txScope is the transaction bound to a context. Only the outermost Begin
// owns it; nested scopes share the pointer to the root.
type txScope struct {
	tx       Transaction
	root     *txScope
	finished bool
}

func (s *txScope) owner() bool {
	return s.root == nil
}

func (s *txScope) done() bool {
	if s.root != nil {
		return s.root.finished
	}
	return s.finished
}

func scopeFrom(ctx context.Context) *txScope {
	s, _ := ctx.Value(txKey{}).(*txScope)
	return s
}

// Tx returns the transaction bound to ctx, or nil.
func Tx(ctx context.Context) Transaction {
	if s := scopeFrom(ctx); s != nil && !s.done() {
		return s.tx
	}
	return nil
}

// BindTx binds tx to ctx so that ExecutorFromContext routes queries to it.
// The caller stays responsible for finishing tx.
func BindTx(ctx context.Context, tx Transaction) context.Context {
	return context.WithValue(ctx, txKey{}, &txScope{tx: tx})
}

// ExecutorFromContext returns the transaction bound to ctx, or conn.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if tx := Tx(ctx); tx != nil {
		return tx
	}
	return conn
}

// UnitOfWork begins transactions on a connection and binds them to the
// returned context. Begin inside an active unit joins it: the nested Commit and
// Rollback are no-ops and the outermost call decides. Finishing an already
// finished unit is a no-op, so Rollback may be deferred after Commit.
type UnitOfWork struct {
	conn Connection
}

// NewUnitOfWork creates a unit of work over conn.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if outer := scopeFrom(ctx); outer != nil && !outer.done() {
		root := outer
		if !outer.owner() {
			root = outer.root
		}
		return context.WithValue(ctx, txKey{}, &txScope{tx: outer.tx, root: root}), nil
	}

	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, txKey{}, &txScope{tx: tx}), nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	return finish(ctx, Transaction.Commit)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	return finish(ctx, Transaction.Rollback)
}

func finish(ctx context.Context, op func(Transaction, context.Context) error) error {
	s := scopeFrom(ctx)
	if s == nil {
		return ErrNoTransaction
	}
	if !s.owner() || s.finished {
		return nil
	}
	s.finished = true
	return op(s.tx, ctx)
}
