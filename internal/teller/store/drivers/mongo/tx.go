package mongo

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/teller/internal/teller/store"
	"go.mongodb.org/mongo-driver/mongo"
)

var errNestedTx = errors.New("mongo: nested transactions are not supported")

type txStore struct {
	store *Store
	sess  mongo.Session
	ctx   context.Context
	done  bool
}

func (t *txStore) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.sess.EndSession(t.ctx)
	return t.sess.CommitTransaction(t.ctx)
}

func (t *txStore) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.sess.EndSession(t.ctx)
	return t.sess.AbortTransaction(t.ctx)
}

// Close is a no-op; the client stays connected.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errNestedTx
}

func (t *txStore) Users() store.Users       { return &usersRepo{c: t.conn(collUsers)} }
func (t *txStore) Accounts() store.Accounts { return &accountsRepo{c: t.conn(collAccounts)} }
func (t *txStore) Transactions() store.Transactions {
	return &transactionsRepo{c: t.conn(collTransactions)}
}
func (t *txStore) MFASessions() store.MFASessions {
	return &mfaSessionsRepo{c: t.conn(collMFASessions)}
}

func (t *txStore) conn(name string) collection {
	c := t.store.conn(name)
	c.sess = t.sess
	return c
}
