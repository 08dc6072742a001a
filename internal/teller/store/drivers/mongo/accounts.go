package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The account number is the document _id, so it is unique across kinds.
var accountConflicts = map[string]string{
	idxPrimary: store.FieldAccountNumber,
}

type accountDoc struct {
	Number    string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Kind      string    `bson:"kind"`
	Balance   int64     `bson:"balance"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d accountDoc) toDomain() domain.Account {
	return domain.Account{
		Number:  d.Number,
		UserID:  d.UserID,
		Kind:    domain.AccountKind(d.Kind),
		Balance: d.Balance,
	}
}

type accountsRepo struct {
	c collection
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.c.InsertOne(r.c.bind(ctx), accountDoc{
		Number:    a.Number,
		UserID:    a.UserID,
		Kind:      string(a.Kind),
		Balance:   a.Balance,
		CreatedAt: time.Now().UTC(),
	})
	return mapDuplicate(err, accountConflicts)
}

func (r *accountsRepo) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	n, err := r.c.CountDocuments(r.c.bind(ctx), bson.M{"_id": number}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *accountsRepo) GetAccount(ctx context.Context, userID string, kind domain.AccountKind) (domain.Account, error) {
	var doc accountDoc
	err := r.c.FindOne(r.c.bind(ctx), bson.M{"user_id": userID, "kind": string(kind)}).Decode(&doc)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r *accountsRepo) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	ctx = r.c.bind(ctx)
	cursor, err := r.c.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "kind", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []accountDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// AddToBalance increments the balance only when the result stays non-negative.
func (r *accountsRepo) AddToBalance(ctx context.Context, userID string, kind domain.AccountKind, delta int64) (domain.Account, error) {
	var doc accountDoc
	err := r.c.FindOneAndUpdate(r.c.bind(ctx),
		bson.M{"user_id": userID, "kind": string(kind), "balance": bson.M{"$gte": -delta}},
		bson.M{"$inc": bson.M{"balance": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if err = mapNotFound(err); !errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, err
	}

	if _, err := r.GetAccount(ctx, userID, kind); err != nil {
		return domain.Account{}, err
	}
	return domain.Account{}, store.ErrConditionFailed
}

var _ store.Accounts = (*accountsRepo)(nil)
