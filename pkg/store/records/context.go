package records

import (
	"context"
	"database/sql"
)

type txKey struct{}

// WithTransaction binds tx to ctx so writers join the caller's transaction.
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}
