package service

import (
	"context"
	"crypto/subtle"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store/drivers/sqlite"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const testIssuer = "teller-test"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "teller-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// plainHasher keeps tests fast; argon2 is covered in pkg/cryptox and in the
// signup scenario.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain$" + password, nil }

func (plainHasher) Verify(password, encodedHash string) error {
	if subtle.ConstantTimeCompare([]byte("plain$"+password), []byte(encodedHash)) == 1 {
		return nil
	}
	return cryptox.ErrPasswordMismatch
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *captureNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *captureNotifier) last(kind domain.NotificationKind) (domain.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].Kind == kind {
			return n.sent[i], true
		}
	}
	return domain.Notification{}, false
}

type testEnv struct {
	store    *sqlite.Store
	users    *UserService
	auth     *AuthService
	mfa      *MFAService
	reset    *ResetService
	ledger   *LedgerService
	sessions *SessionService
	notes    *captureNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sealer, err := cryptox.NewSealer([]byte("test-master-key"))
	require.NoError(t, err)

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	sessions := &SessionService{
		Signer:   signer,
		Verifier: jwtx.NewVerifierEdDSA(keys, testIssuer, 0),
		Issuer:   testIssuer,
		TTL:      time.Hour,
	}
	notes := &captureNotifier{}
	mfa := &MFAService{Store: st, Sealer: sealer, Issuer: "Teller", EnableOnFirstVerify: true}

	return &testEnv{
		store:    st,
		sessions: sessions,
		notes:    notes,
		mfa:      mfa,
		users: &UserService{
			Store:    st,
			Hasher:   plainHasher{},
			Sealer:   sealer,
			Notifier: notes,
			Numbers: &AccountNumberGenerator{
				Lookup: st.Accounts(),
				Prefix: DefaultAccountNumberPrefix,
				Digits: DefaultAccountNumberDigits,
			},
		},
		auth: &AuthService{
			Store:    st,
			Hasher:   plainHasher{},
			Sessions: sessions,
			MFA:      mfa,
			Policy:   MFAPolicyOptional,
		},
		reset: &ResetService{
			Store:     st,
			Hasher:    plainHasher{},
			Notifier:  notes,
			TTL:       DefaultResetTTL,
			ClientURL: "http://localhost:3000",
		},
		ledger: &LedgerService{Store: st},
	}
}

func (e *testEnv) signup(t *testing.T, username, password string) domain.User {
	t.Helper()

	u, _, err := e.users.Signup(context.Background(), SignupRequest{
		Username: username,
		Email:    username + "@x.com",
		Password: password,
		Profile:  domain.Profile{FirstName: "Test", LastName: "User"},
	})
	require.NoError(t, err)
	return u
}

// enableMFA enrolls u and returns the plaintext TOTP secret.
func (e *testEnv) enableMFA(t *testing.T, u domain.User) string {
	t.Helper()
	ctx := context.Background()

	enrollment, err := e.mfa.Enroll(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, e.mfa.ConfirmEnrollment(ctx, u.ID, currentCode(t, enrollment.Secret)))
	return enrollment.Secret
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

// wrongCode returns a six digit code that differs from every code accepted
// in the current skew window.
func wrongCode(t *testing.T, secret string) string {
	t.Helper()

	accepted := map[string]bool{}
	for step := -totpSkew; step <= totpSkew; step++ {
		code, err := totp.GenerateCode(secret, time.Now().Add(time.Duration(step*totpPeriod)*time.Second))
		require.NoError(t, err)
		accepted[code] = true
	}
	for _, c := range []string{"000000", "111111", "222222", "333333", "444444", "555555", "666666", "777777", "888888", "999999", "123456"} {
		if !accepted[c] {
			return c
		}
	}
	t.Fatal("no rejected code found")
	return ""
}
