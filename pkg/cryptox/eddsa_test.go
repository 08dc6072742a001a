package cryptox_test

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateEd25519Key(t *testing.T) {
	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	block, _ := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	_, ok := key.(ed25519.PrivateKey)
	require.True(t, ok)
}

func TestLoadOrGenerateEd25519Key(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.pem")

	first, err := cryptox.LoadOrGenerateEd25519Key(path)
	require.NoError(t, err)
	second, err := cryptox.LoadOrGenerateEd25519Key(path)
	require.NoError(t, err)
	require.Equal(t, first, second, "key should be persisted")

	a, err := cryptox.LoadOrGenerateEd25519Key("")
	require.NoError(t, err)
	b, err := cryptox.LoadOrGenerateEd25519Key("")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "ephemeral keys should differ")
}
