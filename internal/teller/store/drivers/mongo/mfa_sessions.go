package mongo

import (
	"context"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mfaSessionDoc struct {
	TokenHash string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Purpose   string    `bson:"purpose"`
	Attempts  int       `bson:"attempts"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func (d mfaSessionDoc) toDomain() domain.MFASession {
	return domain.MFASession{
		TokenHash: d.TokenHash,
		UserID:    d.UserID,
		Purpose:   domain.MFAPurpose(d.Purpose),
		Attempts:  d.Attempts,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}
}

// mfaSessionsRepo relies on a TTL index for eventual cleanup; reads still
// filter on expires_at since the TTL monitor runs only once a minute.
type mfaSessionsRepo struct {
	c collection
}

func (r *mfaSessionsRepo) CreateMFASession(ctx context.Context, s domain.MFASession) error {
	_, err := r.c.InsertOne(r.c.bind(ctx), mfaSessionDoc{
		TokenHash: s.TokenHash,
		UserID:    s.UserID,
		Purpose:   string(s.Purpose),
		Attempts:  s.Attempts,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	})
	return mapDuplicate(err, nil)
}

func (r *mfaSessionsRepo) GetMFASession(ctx context.Context, tokenHash string, now time.Time) (domain.MFASession, error) {
	var doc mfaSessionDoc
	err := r.c.FindOne(r.c.bind(ctx), bson.M{"_id": tokenHash, "expires_at": bson.M{"$gt": now}}).Decode(&doc)
	if err != nil {
		return domain.MFASession{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r *mfaSessionsRepo) ReserveMFAAttempt(ctx context.Context, tokenHash string, now time.Time, limit int) (domain.MFASession, error) {
	var doc mfaSessionDoc
	err := r.c.FindOneAndUpdate(r.c.bind(ctx),
		bson.M{
			"_id":        tokenHash,
			"expires_at": bson.M{"$gt": now},
			"attempts":   bson.M{"$lt": limit},
		},
		bson.M{"$inc": bson.M{"attempts": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return domain.MFASession{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r *mfaSessionsRepo) ConsumeMFASession(ctx context.Context, tokenHash string) error {
	res, err := r.c.DeleteOne(r.c.bind(ctx), bson.M{"_id": tokenHash})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *mfaSessionsRepo) DeleteExpiredMFASessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.c.DeleteMany(r.c.bind(ctx), bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

var _ store.MFASessions = (*mfaSessionsRepo)(nil)
