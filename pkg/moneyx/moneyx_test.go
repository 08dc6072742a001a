package moneyx_test

import (
	"testing"

	"github.com/aussiebroadwan/teller/pkg/moneyx"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1", 100},
		{"12.34", 1234},
		{"-0.5", -50},
		{"0.01", 1},
		{"100.10", 10010},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := moneyx.Parse(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	_, err := moneyx.Parse("1.001")
	require.ErrorIs(t, err, moneyx.ErrPrecision)

	_, err = moneyx.Parse("1e20")
	require.ErrorIs(t, err, moneyx.ErrRange)

	_, err = moneyx.Parse("ten")
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	require.Equal(t, "12.34", moneyx.Format(1234))
	require.Equal(t, "-0.50", moneyx.Format(-50))
	require.Equal(t, "0.00", moneyx.Format(0))
	require.Equal(t, "12.3", moneyx.FromCents(1230).String())
}
