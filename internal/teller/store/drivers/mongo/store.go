package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collUsers        = "users"
	collAccounts     = "accounts"
	collTransactions = "transactions"
	collMFASessions  = "mfa_sessions"
)

// Index names, matched against duplicate key errors.
const (
	idxUsername     = "username_unique"
	idxEmail        = "email_unique"
	idxResetToken   = "reset_token_hash_unique"
	idxUserKind     = "user_kind_unique"
	idxReference    = "user_reference_unique"
	idxLegacyRef    = "reference_unique"
	idxUserCreated  = "user_created"
	idxMFAExpiresAt = "expires_at_ttl"
	idxPrimary      = "_id_"
)

// Store is a MongoDB-backed store.Store. Transactions need a replica set.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to uri and selects database dbName.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// ApplyMigrations creates the collection indexes. It is idempotent.
func (s *Store) ApplyMigrations() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName(idxUsername).SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(idxEmail).SetUnique(true)},
			{
				Keys: bson.D{{Key: "reset_token_hash", Value: 1}},
				Options: options.Index().SetName(idxResetToken).SetUnique(true).
					SetPartialFilterExpression(bson.M{"reset_token_hash": bson.M{"$type": "string"}}),
			},
		},
		collAccounts: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "kind", Value: 1}}, Options: options.Index().SetName(idxUserKind).SetUnique(true)},
		},
		collTransactions: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "reference", Value: 1}}, Options: options.Index().SetName(idxReference).SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName(idxUserCreated)},
		},
		collMFASessions: {
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetName(idxMFAExpiresAt).SetExpireAfterSeconds(0)},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}

	// References used to be unique across all users.
	if _, err := s.db.Collection(collTransactions).Indexes().DropOne(ctx, idxLegacyRef); err != nil && !isIndexNotFound(err) {
		return fmt.Errorf("failed to drop %s: %w", idxLegacyRef, err)
	}
	return nil
}

func isIndexNotFound(err error) bool {
	var cerr mongo.CommandError
	return errors.As(err, &cerr) && (cerr.Code == 26 || cerr.Code == 27) // NamespaceNotFound, IndexNotFound
}

// Tx starts a session transaction. Repos obtained from the returned Tx bind
// every call to the session. Commit and Rollback run under ctx. Callers that
// can be retried should prefer WithTx.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, err
	}
	if err := sess.StartTransaction(); err != nil {
		sess.EndSession(ctx)
		return nil, err
	}
	return &txStore{store: s, sess: sess, ctx: ctx}, nil
}

// WithTx runs fn in a transaction via mongo.Session.WithTransaction, which
// reruns fn on TransientTransactionError (e.g. a WriteConflict with a
// concurrent transaction) and retries commits with an
// UnknownTransactionCommitResult. fn must therefore be safe to run again.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		// The transaction is owned by WithTransaction; Commit and Rollback
		// on this Tx are no-ops.
		return nil, fn(&txStore{store: s, sess: sess, ctx: sc, done: true})
	})
	return err
}

func (s *Store) Users() store.Users       { return &usersRepo{c: s.conn(collUsers)} }
func (s *Store) Accounts() store.Accounts { return &accountsRepo{c: s.conn(collAccounts)} }
func (s *Store) Transactions() store.Transactions {
	return &transactionsRepo{c: s.conn(collTransactions)}
}
func (s *Store) MFASessions() store.MFASessions { return &mfaSessionsRepo{c: s.conn(collMFASessions)} }

func (s *Store) conn(name string) collection {
	return collection{Collection: s.db.Collection(name)}
}

// collection is a *mongo.Collection optionally bound to a session.
type collection struct {
	*mongo.Collection
	sess mongo.Session
}

// bind attaches the session, if any, to ctx.
func (c collection) bind(ctx context.Context) context.Context {
	if c.sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, c.sess)
}

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

// mapDuplicate turns duplicate key errors into *store.ConflictError using the
// index named in the server message.
func mapDuplicate(err error, fields map[string]string) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	msg := err.Error()
	for index, field := range fields {
		if strings.Contains(msg, "index: "+index+" ") {
			return &store.ConflictError{Field: field}
		}
	}
	return &store.ConflictError{Field: "unknown"}
}
