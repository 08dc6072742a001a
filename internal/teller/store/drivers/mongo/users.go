package mongo

import (
	"context"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var userConflicts = map[string]string{
	idxUsername: store.FieldUsername,
	idxEmail:    store.FieldEmail,
}

type userDoc struct {
	ID             string         `bson:"_id"`
	Username       string         `bson:"username"`
	Email          string         `bson:"email"`
	PasswordHash   string         `bson:"password_hash"`
	Profile        domain.Profile `bson:"profile"`
	SSNSealed      *string        `bson:"ssn_sealed,omitempty"`
	ApprovedAt     *time.Time     `bson:"approved_at,omitempty"`
	MFAEnabledAt   *time.Time     `bson:"mfa_enabled_at,omitempty"`
	MFASecret      *string        `bson:"mfa_secret,omitempty"`
	ResetTokenHash *string        `bson:"reset_token_hash,omitempty"`
	ResetExpiresAt *time.Time     `bson:"reset_expires_at,omitempty"`
	LastLoginAt    *time.Time     `bson:"last_login_at,omitempty"`
	CreatedAt      time.Time      `bson:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at"`
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Profile:      d.Profile,
		SSNSealed:    d.SSNSealed,
		ApprovedAt:   d.ApprovedAt,
		MFAEnabledAt: d.MFAEnabledAt,
		MFASecret:    d.MFASecret,
		LastLoginAt:  d.LastLoginAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type usersRepo struct {
	c collection
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.c.InsertOne(r.c.bind(ctx), userDoc{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Profile:      u.Profile,
		SSNSealed:    u.SSNSealed,
		ApprovedAt:   u.ApprovedAt,
		MFAEnabledAt: u.MFAEnabledAt,
		MFASecret:    u.MFASecret,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
	return mapDuplicate(err, userConflicts)
}

func (r *usersRepo) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var doc userDoc
	if err := r.c.FindOne(r.c.bind(ctx), filter).Decode(&doc); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// updateOne applies update and reports ErrNotFound when nothing matched.
func (r *usersRepo) updateOne(ctx context.Context, filter, update any) error {
	res, err := r.c.UpdateOne(r.c.bind(ctx), filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) ApproveUser(ctx context.Context, userID string, at time.Time) error {
	return r.updateOne(ctx, bson.M{"_id": userID}, mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"approved_at": bson.M{"$ifNull": bson.A{"$approved_at", at}},
			"updated_at":  at,
		}}},
	})
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.updateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"last_login_at": at}})
}

func (r *usersRepo) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	err := r.updateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"reset_token_hash": tokenHash,
		"reset_expires_at": expiresAt,
	}})
	return mapDuplicate(err, nil)
}

func (r *usersRepo) GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	return r.findOne(ctx, bson.M{"reset_token_hash": tokenHash, "reset_expires_at": bson.M{"$gt": now}})
}

func (r *usersRepo) RedeemResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error) {
	var doc userDoc
	err := r.c.FindOneAndUpdate(r.c.bind(ctx),
		bson.M{
			"reset_token_hash": tokenHash,
			"reset_expires_at": bson.M{"$gt": now},
		},
		bson.M{
			"$set":   bson.M{"password_hash": passwordHash, "updated_at": now},
			"$unset": bson.M{"reset_token_hash": "", "reset_expires_at": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r *usersRepo) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.c.UpdateMany(r.c.bind(ctx),
		bson.M{"reset_expires_at": bson.M{"$lte": now}},
		bson.M{"$unset": bson.M{"reset_token_hash": "", "reset_expires_at": ""}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *usersRepo) SetMFASecret(ctx context.Context, userID, sealedSecret string) error {
	return r.updateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set":   bson.M{"mfa_secret": sealedSecret},
		"$unset": bson.M{"mfa_enabled_at": ""},
	})
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string, at time.Time) error {
	return r.updateOne(ctx,
		bson.M{"_id": userID, "mfa_secret": bson.M{"$type": "string"}},
		mongo.Pipeline{
			{{Key: "$set", Value: bson.M{"mfa_enabled_at": bson.M{"$ifNull": bson.A{"$mfa_enabled_at", at}}}}},
		},
	)
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	return r.updateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$unset": bson.M{"mfa_secret": "", "mfa_enabled_at": ""},
	})
}

var _ store.Users = (*usersRepo)(nil)
