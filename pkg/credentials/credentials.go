// Package credentials reads the local credential store used by executors.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration indicates the credential store is missing or invalid.
// Executors fail closed on it: no external call is attempted without
// verified credentials, and there is no insecure fallback.
var ErrConfiguration = errors.New("invalid credential configuration")

// SMTP holds the mail server credentials with fixed keys.
type SMTP struct {
	Server  string `json:"server"   validate:"required,hostname|ip"`
	Port    int    `json:"port"     validate:"required,min=1,max=65535"`
	Address string `json:"address"  validate:"required,email"`
	Secret  string `json:"secret"   validate:"required"`
	UseTLS  bool   `json:"use_tls"`
}

// Store is a read-once accessor over a local JSON credential file.
type Store struct {
	path     string
	validate *validator.Validate
}

// NewStore creates a store for the given file path.
func NewStore(path string) *Store {
	return &Store{
		path:     path,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LoadSMTP reads and validates the SMTP credentials.
func (s *Store) LoadSMTP() (*SMTP, error) {
	body, err := os.ReadFile(filepath.Clean(s.path))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %w", ErrConfiguration, s.path, err)
	}

	var creds SMTP

	err = json.Unmarshal(body, &creds)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed credential file %s: %w", ErrConfiguration, s.path, err)
	}

	err = s.validate.Struct(&creds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return &creds, nil
}

// IsConfigurationError checks if an error indicates a credential problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
