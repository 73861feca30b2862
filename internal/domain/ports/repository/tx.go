package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager provides a thin abstraction to execute a function within
// a database transaction, passing the underlying transaction handle via `tx`.
//
// Repository methods accept `tx Tx` and must gracefully accept nil (the
// non-transactional path). The concrete type of `tx` is infra-defined
// (pgx.Tx for Postgres).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
	// WithinSavepoint runs fn against a savepoint on tx and releases it on
	// success. On error only the savepoint is rolled back, so the enclosing
	// transaction stays usable; Postgres otherwise aborts the whole
	// transaction on the first failed statement.
	WithinSavepoint(ctx context.Context, tx Tx, fn func(tx Tx) error) error
}
