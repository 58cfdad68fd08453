package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrEmptyCredential = errors.New("credential is empty")

type Credentials struct {
	Identifier string
	Password   string
}

// ReadCredentials reads the identifier and app password from the files
// named in cfg. An identifier set directly in the environment wins over
// the identifier file.
func ReadCredentials(cfg CredentialsConfig) (Credentials, error) {
	identifier := strings.TrimSpace(cfg.Identifier)
	if identifier == "" {
		var err error
		identifier, err = readTrimmed(cfg.IdentifierFile)
		if err != nil {
			return Credentials{}, err
		}
	}

	password, err := readTrimmed(cfg.PasswordFile)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{
		Identifier: strings.TrimPrefix(identifier, "@"),
		Password:   password,
	}, nil
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyCredential)
	}

	return s, nil
}
