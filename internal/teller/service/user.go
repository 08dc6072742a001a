package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/idx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
)

const (
	DefaultSignupAttempts = 5

	minPasswordLen = 6
	maxPasswordLen = 128
	maxUsernameLen = 64

	dateLayout = "2006-01-02"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipPattern   = regexp.MustCompile(`^\d{5}$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
	ssnPattern   = regexp.MustCompile(`^\d{9}$`)
)

// PasswordHasher is satisfied by cryptox.Argon2Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) error
}

// Notifier publishes out-of-band messages to users.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

type SignupRequest struct {
	Username string
	Email    string
	Password string
	SSN      string
	Profile  domain.Profile
}

type UserService struct {
	Store    store.Store
	Hasher   PasswordHasher
	Sealer   *cryptox.Sealer
	Numbers  *AccountNumberGenerator
	Notifier Notifier

	// RequireApproval leaves new users unapproved until an operator approves
	// them.
	RequireApproval bool

	// SignupAttempts bounds retries after an account number collision on
	// insert.
	SignupAttempts int
}

// Signup validates req, then creates the user together with a checking and
// a savings account. A losing race for an account number is retried with
// fresh numbers; a duplicate username or email is a conflict.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (domain.User, []domain.Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if err := validateSignup(req); err != nil {
		return domain.User{}, nil, err
	}

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return domain.User{}, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Profile:      req.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !s.RequireApproval {
		u.ApprovedAt = &now
	}
	if req.SSN != "" {
		sealed, err := s.Sealer.Seal(req.SSN)
		if err != nil {
			return domain.User{}, nil, err
		}
		u.SSNSealed = &sealed
	}

	attempts := s.SignupAttempts
	if attempts <= 0 {
		attempts = DefaultSignupAttempts
	}

	l := slogx.FromContext(ctx)
	for attempt := 1; attempt <= attempts; attempt++ {
		accounts, err := s.newAccounts(ctx, u.ID)
		if err != nil {
			return domain.User{}, nil, err
		}

		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Users().CreateUser(ctx, u); err != nil {
				return err
			}
			for _, a := range accounts {
				if err := tx.Accounts().CreateAccount(ctx, a); err != nil {
					return err
				}
			}
			return nil
		})

		var conflict *store.ConflictError
		switch {
		case err == nil:
			l.Info("user signed up", slog.String("user_id", u.ID), slog.Bool("approved", u.Approved()))
			if !u.Approved() {
				s.notify(ctx, u, domain.NotifySignupPending, "", nil)
			}
			return u, accounts, nil
		case errors.As(err, &conflict) && conflict.Field == store.FieldAccountNumber:
			l.Warn("account number collision on insert", slog.Int("attempt", attempt))
			continue
		case errors.As(err, &conflict):
			return domain.User{}, nil, fmt.Errorf("%w: %s", ErrConflict, conflict.Field)
		default:
			return domain.User{}, nil, storageErr(err)
		}
	}

	return domain.User{}, nil, &ExhaustedError{Attempts: attempts}
}

// newAccounts draws one number per account kind.
func (s *UserService) newAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0, len(domain.AccountKinds))
	for _, kind := range domain.AccountKinds {
		number, err := s.Numbers.Generate(ctx)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, domain.Account{Number: number, UserID: userID, Kind: kind})
	}
	return accounts, nil
}

// Approve opens the approval gate for userID.
func (s *UserService) Approve(ctx context.Context, userID string) error {
	if err := s.Store.Users().ApproveUser(ctx, userID, time.Now()); err != nil {
		return mapUserErr(err)
	}
	return nil
}

// GetUser fetches a user by id.
func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, mapUserErr(err)
	}
	return u, nil
}

func (s *UserService) notify(ctx context.Context, u domain.User, kind domain.NotificationKind, link string, expiresAt *time.Time) {
	if s.Notifier == nil {
		return
	}
	publish(ctx, s.Notifier, u, kind, link, expiresAt)
}

// publish sends a notification, logging rather than failing the request.
func publish(ctx context.Context, n Notifier, u domain.User, kind domain.NotificationKind, link string, expiresAt *time.Time) {
	err := n.Notify(ctx, domain.Notification{
		ID:        idx.New().String(),
		Kind:      kind,
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Link:      link,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to publish notification",
			slog.String("kind", string(kind)),
			slog.String("user_id", u.ID),
			slog.Any("err", err),
		)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignup(req SignupRequest) error {
	switch {
	case req.Username == "":
		return invalid("username", "is required")
	case utf8.RuneCountInString(req.Username) > maxUsernameLen:
		return invalid("username", "is too long")
	case strings.Contains(req.Username, "@"):
		return invalid("username", "must not contain @")
	case !emailPattern.MatchString(req.Email):
		return invalid("email", "must be a valid email address")
	}

	if err := validatePassword(req.Password); err != nil {
		return err
	}
	if req.SSN != "" && !ssnPattern.MatchString(req.SSN) {
		return invalid("ssn", "must be 9 digits")
	}
	return validateProfile(req.Profile)
}

func validatePassword(password string) error {
	switch n := utf8.RuneCountInString(password); {
	case n < minPasswordLen:
		return invalid("password", fmt.Sprintf("must be at least %d characters long", minPasswordLen))
	case n > maxPasswordLen:
		return invalid("password", "is too long")
	}
	return nil
}

func validateProfile(p domain.Profile) error {
	if p.ZipCode != "" && !zipPattern.MatchString(p.ZipCode) {
		return invalid("zip_code", "must be 5 digits")
	}
	if p.Phone != "" && !phonePattern.MatchString(p.Phone) {
		return invalid("phone", "must be 10 digits")
	}
	for field, value := range map[string]string{"dob": p.DateOfBirth, "id_expiration": p.IDExpiration} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, value); err != nil {
			return invalid(field, "must be a YYYY-MM-DD date")
		}
	}
	return nil
}
