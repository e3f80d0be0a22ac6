package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heisync/internal/core/domain"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", "(not set)"},
		{"short", "abc123", "****"},
		{"exactly 8 chars", "12345678", "****"},
		{"long", "tok-1234567890abcdef", "tok-...cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskToken(tt.input))
		})
	}
}

func TestSettingsShowCmd_Defaults(t *testing.T) {
	withServices(t, nil, newMapping(), nil)

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "index endpoint\t(not set)")
	assert.Contains(t, out, "token\t(not set)")
	assert.Contains(t, out, "rate limit\tunlimited")
	assert.Contains(t, out, "timeout\t30s")
	assert.Contains(t, out, "cache ttl\tnever expires")
	assert.Contains(t, out, "heisync settings endpoint")
}

func TestSettingsEndpointCmd(t *testing.T) {
	mapping := newMapping()
	withServices(t, nil, mapping, nil)

	out, err := execute(t, "settings", "endpoint", "https://registry.example/index")
	require.NoError(t, err)
	assert.Contains(t, out, "Index endpoint set to https://registry.example/index")
	assert.Equal(t, "https://registry.example/index", mapping.IndexEndpoint())

	_, err = execute(t, "settings", "endpoint", "registry.example")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsTokenCmd(t *testing.T) {
	mapping := newMapping()
	withServices(t, nil, mapping, nil)

	out, err := execute(t, "settings", "token", "tok-1234567890abcdef")
	require.NoError(t, err)
	assert.Contains(t, out, "Token set: tok-...cdef")
	assert.Equal(t, "tok-1234567890abcdef", mapping.RemoteSettings().Token)

	out, err = execute(t, "settings", "token", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Token removed.")
	assert.Empty(t, mapping.RemoteSettings().Token)
}

func TestSettingsTokenCmd_ReadsFromInput(t *testing.T) {
	mapping := newMapping()
	withServices(t, nil, mapping, nil)
	rootCmd.SetIn(strings.NewReader("piped-token\n"))
	defer rootCmd.SetIn(nil)

	_, err := execute(t, "settings", "token")

	require.NoError(t, err)
	assert.Equal(t, "piped-token", mapping.RemoteSettings().Token)
}

func TestSettingsTokenCmd_EmptyInput(t *testing.T) {
	withServices(t, nil, newMapping(), nil)
	rootCmd.SetIn(strings.NewReader("\n"))
	defer rootCmd.SetIn(nil)

	_, err := execute(t, "settings", "token")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token entered")
}
