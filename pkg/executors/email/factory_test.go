package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/factotum/pkg/credentials"
)

func TestFactory_Create_FailsClosedWithoutCredentials(t *testing.T) {
	store := credentials.NewStore(filepath.Join(t.TempDir(), "missing.json"))
	factory := NewFactory(store)

	executor, err := factory.Create(nil)
	require.ErrorIs(t, err, credentials.ErrConfiguration)
	assert.Nil(t, executor, "no executor without verified credentials")
}

func TestFactory_Create(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	content := `{"server": "smtp.example.com", "port": 587, "address": "bot@example.com", "secret": "s3cret", "use_tls": true}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	factory := NewFactory(credentials.NewStore(path))
	assert.Equal(t, "email", factory.ID())

	executor, err := factory.Create(nil)
	require.NoError(t, err)
	assert.NotNil(t, executor)
}

func TestFactory_Schema(t *testing.T) {
	factory := NewFactory(credentials.NewStore("unused"))

	schema := factory.Schema()
	require.NotNil(t, schema)
	assert.Contains(t, schema["required"], "to")
	assert.Contains(t, schema["required"], "subject")
}
