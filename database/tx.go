package database

import (
	"context"

	"github.com/rpupo63/blog-admin-backend/errs"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// txKey is the key type for storing a transaction in context
type txKey struct{}

// WithTx returns a new context with the transaction attached
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTx retrieves the transaction from context if it exists
func GetTx(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok
}

// conn returns the transaction carried by ctx, or db when there is none,
// bound to ctx either way.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := GetTx(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// primary is conn pinned to the write source. Reads that decide or confirm a
// write use it, since a lagging replica may not have the row yet.
func primary(ctx context.Context, db *gorm.DB) *gorm.DB {
	return conn(ctx, db).Clauses(dbresolver.Write)
}

// RunInTransaction executes fn within a database transaction.
// If ctx already carries a transaction, fn joins it and the outer caller
// decides whether to commit. Otherwise a new transaction is started and
// committed when fn returns nil, rolled back when it returns an error.
// Errors from fn are returned as is; a failure to begin or commit becomes a
// transaction failed error.
func RunInTransaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	if _, ok := GetTx(ctx); ok {
		return fn(ctx)
	}

	var fnErr error
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(WithTx(ctx, tx))
		return fnErr
	})
	if err != nil && fnErr == nil {
		return errs.NewTransactionFailedError("commit", err)
	}
	return err
}

// Transactor exposes RunInTransaction over a fixed connection.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunInTransaction(ctx, t.db, fn)
}
