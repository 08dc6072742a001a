package cryptox_test

import (
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	s, err := cryptox.NewSealer([]byte("test-master-key"))
	require.NoError(t, err)

	sealed, err := s.Seal("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	require.NotContains(t, sealed, "JBSWY3DPEHPK3PXP")

	again, err := s.Seal("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	require.NotEqual(t, sealed, again, "nonce should be random")

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "JBSWY3DPEHPK3PXP", opened)
}

func TestSealer_WrongKey(t *testing.T) {
	a, err := cryptox.NewSealer([]byte("key-a"))
	require.NoError(t, err)
	b, err := cryptox.NewSealer([]byte("key-b"))
	require.NoError(t, err)

	sealed, err := a.Seal("123456789")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	require.ErrorIs(t, err, cryptox.ErrCiphertext)

	_, err = a.Open("not base64 !")
	require.ErrorIs(t, err, cryptox.ErrCiphertext)
}

func TestLoadOrGenerateSealer_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "master")

	first, err := cryptox.LoadOrGenerateSealer(path)
	require.NoError(t, err)
	sealed, err := first.Seal("secret")
	require.NoError(t, err)

	second, err := cryptox.LoadOrGenerateSealer(path)
	require.NoError(t, err)
	opened, err := second.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "secret", opened)
}
