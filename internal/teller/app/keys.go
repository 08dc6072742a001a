package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/jwtx"
)

// sessionVerifyLeeway absorbs clock skew between replicas sharing a key.
const sessionVerifyLeeway = 30 * time.Second

// SessionKeys holds the signer and verifier for session tokens.
type SessionKeys struct {
	Signer   *jwtx.EdDSASigner
	Verifier *jwtx.EdDSAVerifier
	KeySet   *jwtx.KeySet
}

// InitSessionKeys loads the Ed25519 session key from cfg.SessionKeyFile,
// generating one on first start. The kid is derived from the public key so
// every replica sharing the file agrees on it.
func InitSessionKeys(cfg Config, logger *slog.Logger) (*SessionKeys, error) {
	pemKey, err := cryptox.LoadOrGenerateEd25519Key(cfg.SessionKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load session key: %w", err)
	}

	// Parse once with a placeholder kid to reach the public key.
	probe, err := jwtx.NewSignerEdDSA("", pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session key: %w", err)
	}
	sum := sha256.Sum256(probe.Public())
	kid := hex.EncodeToString(sum[:8])

	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session key: %w", err)
	}

	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	logger.Info("session signing key loaded", "kid", kid, "alg", signer.Alg(), "issuer", cfg.Issuer)

	return &SessionKeys{
		Signer:   signer,
		Verifier: jwtx.NewVerifierEdDSA(keys, cfg.Issuer, sessionVerifyLeeway),
		KeySet:   keys,
	}, nil
}

// InitSealer loads the master key that seals MFA secrets and SSNs.
func InitSealer(cfg Config, logger *slog.Logger) (*cryptox.Sealer, error) {
	sealer, err := cryptox.LoadOrGenerateSealer(cfg.MasterKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	logger.Info("master key loaded", "path", cfg.MasterKeyFile)
	return sealer, nil
}
