// Package cmd provides common initialization functions for the command-line applications.
package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dukex/factotum/pkg/credentials"
	"github.com/dukex/factotum/pkg/executors/email"
	"github.com/dukex/factotum/pkg/executors/note"
	"github.com/dukex/factotum/pkg/executors/socialpost"
	"github.com/dukex/factotum/pkg/registry"
)

// RegistryConfig holds the paths and endpoints the native executors need.
type RegistryConfig struct {
	CredentialsPath string
	NotesDir        string
	PostEndpoint    string
}

// DefaultRegistryConfig resolves executor settings from the environment.
func DefaultRegistryConfig() RegistryConfig {
	home, _ := os.UserHomeDir()

	credentialsPath := os.Getenv("FACTOTUM_CREDENTIALS")
	if credentialsPath == "" {
		credentialsPath = filepath.Join(home, ".factotum", "credentials.json")
	}

	notesDir := os.Getenv("FACTOTUM_NOTES_DIR")
	if notesDir == "" {
		notesDir = filepath.Join(home, ".factotum", "notes")
	}

	return RegistryConfig{
		CredentialsPath: credentialsPath,
		NotesDir:        notesDir,
		PostEndpoint:    os.Getenv("FACTOTUM_POST_ENDPOINT"),
	}
}

// NewRegistry builds the registry with the native executors registered.
func NewRegistry(logger *slog.Logger, config RegistryConfig) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterExecutor(email.NewFactory(credentials.NewStore(config.CredentialsPath)))
	reg.RegisterExecutor(socialpost.NewFactory(config.PostEndpoint))
	reg.RegisterExecutor(note.NewFactory(config.NotesDir))

	return reg
}
