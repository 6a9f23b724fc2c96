package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCredentials(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestStore_LoadSMTP(t *testing.T) {
	path := writeCredentials(t, `{
		"server": "smtp.example.com",
		"port": 587,
		"address": "bot@example.com",
		"secret": "hunter2",
		"use_tls": true
	}`)

	creds, err := NewStore(path).LoadSMTP()
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com", creds.Server)
	assert.Equal(t, 587, creds.Port)
	assert.Equal(t, "bot@example.com", creds.Address)
	assert.Equal(t, "hunter2", creds.Secret)
	assert.True(t, creds.UseTLS)
}

func TestStore_LoadSMTP_FailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed json", content: "{not json"},
		{name: "empty object", content: "{}"},
		{name: "missing secret", content: `{"server": "smtp.example.com", "port": 587, "address": "bot@example.com"}`},
		{name: "bad address", content: `{"server": "smtp.example.com", "port": 587, "address": "not-an-email", "secret": "x"}`},
		{name: "port out of range", content: `{"server": "smtp.example.com", "port": 70000, "address": "bot@example.com", "secret": "x"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeCredentials(t, tc.content)

			creds, err := NewStore(path).LoadSMTP()
			require.ErrorIs(t, err, ErrConfiguration)
			assert.True(t, IsConfigurationError(err))
			assert.Nil(t, creds)
		})
	}
}

func TestStore_LoadSMTP_MissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"))

	_, err := store.LoadSMTP()
	require.ErrorIs(t, err, ErrConfiguration)
}
