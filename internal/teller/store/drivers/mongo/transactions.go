package mongo

import (
	"context"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var transactionConflicts = map[string]string{
	idxReference: store.FieldReference,
}

type transactionDoc struct {
	ID           string    `bson:"_id"`
	UserID       string    `bson:"user_id"`
	AccountKind  string    `bson:"account_kind"`
	Amount       int64     `bson:"amount"`
	BalanceAfter int64     `bson:"balance_after"`
	Description  string    `bson:"description"`
	Reference    string    `bson:"reference"`
	CreatedAt    time.Time `bson:"created_at"`
}

type transactionsRepo struct {
	c collection
}

func (r *transactionsRepo) CreateTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := r.c.InsertOne(r.c.bind(ctx), transactionDoc{
		ID:           t.ID,
		UserID:       t.UserID,
		AccountKind:  string(t.AccountKind),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Description:  t.Description,
		Reference:    t.Reference,
		CreatedAt:    t.CreatedAt,
	})
	return mapDuplicate(err, transactionConflicts)
}

func (r *transactionsRepo) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	ctx = r.c.bind(ctx)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []transactionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Transaction{
			ID:           d.ID,
			UserID:       d.UserID,
			AccountKind:  domain.AccountKind(d.AccountKind),
			Amount:       d.Amount,
			BalanceAfter: d.BalanceAfter,
			Description:  d.Description,
			Reference:    d.Reference,
			CreatedAt:    d.CreatedAt,
		})
	}
	return out, nil
}

var _ store.Transactions = (*transactionsRepo)(nil)
